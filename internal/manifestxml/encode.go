package manifestxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"mpkg/internal/manifest"
)

// TimeLayout is the UTC date-time text of the start attribute.
const TimeLayout = "2006-01-02T15:04:05Z"

// Document is the mediapackage root. Nil groups are not written.
type Document struct {
	XMLName      xml.Name `xml:"mediapackage"`
	ID           string   `xml:"id,attr,omitempty"`
	Start        string   `xml:"start,attr,omitempty"`
	Duration     string   `xml:"duration,attr,omitempty"`
	Media        *Group   `xml:"media"`
	Metadata     *Group   `xml:"metadata"`
	Attachments  *Group   `xml:"attachments"`
	Unclassified *Group   `xml:"unclassified"`
}

// Group wraps the elements of one kind.
type Group struct {
	Elements []Node `xml:",any"`
}

func (d *Document) group(kind manifest.Kind) **Group {
	switch kind {
	case manifest.KindTrack:
		return &d.Media
	case manifest.KindCatalog:
		return &d.Metadata
	case manifest.KindAttachment:
		return &d.Attachments
	default:
		return &d.Unclassified
	}
}

// Nodes returns the element nodes of kind's group, or nil when absent.
func (d *Document) Nodes(kind manifest.Kind) []Node {
	g := *d.group(kind)
	if g == nil {
		return nil
	}
	return g.Elements
}

// Encode builds the document for m, rendering each element with s.
func Encode(m *manifest.Manifest, s ElementSerializer, ctx RenderContext) (*Document, error) {
	if m == nil {
		return nil, errors.New("encode: manifest is nil")
	}
	if s == nil {
		return nil, errors.New("encode: serializer is nil")
	}

	doc := &Document{}
	if id := m.ID(); !id.IsZero() {
		doc.ID = id.String()
	}
	if start := m.Start(); !start.IsZero() && start.UnixMilli() > 0 {
		doc.Start = FormatTime(start)
	}
	if d := m.Duration(); d > 0 {
		doc.Duration = strconv.FormatInt(d, 10)
	}

	for _, kind := range manifest.Kinds {
		elements := m.ByKind(kind)
		if len(elements) == 0 {
			continue
		}
		slices.SortStableFunc(elements, manifest.Compare)
		group := &Group{Elements: make([]Node, 0, len(elements))}
		for _, el := range elements {
			node, err := s.Render(el, ctx)
			if err != nil {
				return nil, fmt.Errorf("render %s %q: %w", kind, el.ID(), err)
			}
			group.Elements = append(group.Elements, node)
		}
		*doc.group(kind) = group
	}
	return doc, nil
}

// Write serializes doc as indented XML with a declaration.
func Write(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal encodes m and returns the XML text.
func Marshal(m *manifest.Manifest, s ElementSerializer, ctx RenderContext) ([]byte, error) {
	doc, err := Encode(m, s, ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTime renders t as the start attribute text.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts the start attribute text, tolerating fractional seconds
// and explicit offsets.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date-time %q", value)
}
