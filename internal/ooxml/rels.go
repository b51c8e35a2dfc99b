// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ooxml

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Namespaces and relationship types used by the renderers.
const (
	NSPackageRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentType = "http://schemas.openxmlformats.org/package/2006/content-types"

	RelOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RelTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RelStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
)

// Relationships is a parsed .rels part.
type Relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Rels    []Relationship `xml:"Relationship"`
}

// Relationship links a source part to a target.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// ByID returns the relationship with the given id.
func (r *Relationships) ByID(id string) (Relationship, bool) {
	for _, rel := range r.Rels {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// NextID returns an unused "rIdN" identifier.
func (r *Relationships) NextID() string {
	maxID := 0
	for _, rel := range r.Rels {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}
	return "rId" + strconv.Itoa(maxID+1)
}

// RelsName returns the name of the relationships part for source, e.g.
// "ppt/presentation.xml" -> "ppt/_rels/presentation.xml.rels".
func RelsName(source string) string {
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// ResolveTarget returns the part name a relationship target points to.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

// RelativeTarget returns the target string that points from source to part.
func RelativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")
	if path.Dir(source) == "." {
		from = nil
	}
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for range from[i:] {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}

// Rels parses the relationships of source. A missing .rels part yields an
// empty set.
func (p *Package) Rels(source string) (*Relationships, error) {
	rels := &Relationships{}
	data, ok := p.Part(RelsName(source))
	if !ok {
		return rels, nil
	}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", RelsName(source), err)
	}
	return rels, nil
}

// AddRelationship appends a relationship from source to the target part and
// returns its id.
func (p *Package) AddRelationship(source, relType, targetPart string) (string, error) {
	rels, err := p.Rels(source)
	if err != nil {
		return "", err
	}
	id := rels.NextID()
	entry := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`,
		id, relType, Escape(RelativeTarget(source, targetPart)))

	name := RelsName(source)
	data, ok := p.Part(name)
	if !ok {
		data = []byte(XMLHeader + `<Relationships xmlns="` + NSPackageRels + `"></Relationships>`)
	}
	updated, err := InsertBefore(data, "</Relationships>", entry)
	if err != nil {
		return "", fmt.Errorf("updating %s: %w", name, err)
	}
	p.SetPart(name, updated)
	return id, nil
}

// AddOverride registers a content type for part unless one is present.
func (p *Package) AddOverride(part, contentType string) error {
	data, ok := p.Part(ContentTypesPart)
	if !ok {
		return fmt.Errorf("missing %s", ContentTypesPart)
	}
	partName := "/" + part
	if strings.Contains(string(data), `PartName="`+partName+`"`) {
		return nil
	}
	entry := fmt.Sprintf(`<Override PartName="%s" ContentType="%s"/>`, partName, contentType)
	updated, err := InsertBefore(data, "</Types>", entry)
	if err != nil {
		return fmt.Errorf("updating %s: %w", ContentTypesPart, err)
	}
	p.SetPart(ContentTypesPart, updated)
	return nil
}

// InsertBefore inserts snippet before the last occurrence of closing.
func InsertBefore(data []byte, closing, snippet string) ([]byte, error) {
	s := string(data)
	i := strings.LastIndex(s, closing)
	if i < 0 {
		return nil, fmt.Errorf("element %s not found", closing)
	}
	return []byte(s[:i] + snippet + s[i:]), nil
}

// Escape returns s with XML special characters escaped.
func Escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
