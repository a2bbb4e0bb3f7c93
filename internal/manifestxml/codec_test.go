package manifestxml_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"mpkg/internal/elementbuilder"
	"mpkg/internal/identifier"
	"mpkg/internal/manifest"
	"mpkg/internal/manifestxml"
)

type elementView struct {
	Kind        string
	ID          string
	Flavor      string
	Tags        []string
	Reference   string
	URI         string
	MimeType    string
	Checksum    string
	Description string
	Size        int64
	Duration    int64
}

type manifestView struct {
	ID       string
	Start    time.Time
	Duration int64
	Elements map[string]elementView
}

func viewOf(m *manifest.Manifest) manifestView {
	v := manifestView{
		ID:       m.ID().String(),
		Start:    m.Start(),
		Duration: m.Duration(),
		Elements: map[string]elementView{},
	}
	for _, el := range m.Elements() {
		ev := elementView{
			Kind:        el.Kind().String(),
			ID:          el.ID(),
			Flavor:      el.Flavor().String(),
			Tags:        el.Tags(),
			URI:         el.URI(),
			MimeType:    el.MimeType(),
			Checksum:    el.Checksum().String(),
			Description: el.Description(),
			Size:        el.Size(),
			Duration:    manifest.DurationUnset,
		}
		if ref := el.Reference(); ref != nil {
			ev.Reference = ref.String()
		}
		if tr, ok := el.(*manifest.Track); ok {
			ev.Duration = tr.Duration()
		}
		v.Elements[el.ID()] = ev
	}
	return v
}

func newBuilder() *elementbuilder.Builder {
	return elementbuilder.New(elementbuilder.WithFileSystem(memoryfs.New()), elementbuilder.WithBaseDir("/ws"))
}

func sampleManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	id, err := identifier.UUIDBuilder{}.New()
	if err != nil {
		t.Fatalf("mint id: %v", err)
	}
	m := manifest.New(id)
	m.SetStart(time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC))

	presenter := manifest.NewTrack(manifest.NewFlavor("presenter", "source"), "/ws/presenter.mp4")
	presenter.SetDuration(60000)
	presenter.SetMimeType("video/mp4")
	presenter.SetSize(1 << 20)
	presenter.AddTag("archive")
	presentation := manifest.NewTrack(manifest.NewFlavor("presentation", "source"), "/ws/slides.mp4")
	presentation.SetDuration(59000)

	episode := manifest.NewCatalog(manifest.NewFlavor("dublincore", "episode"), "/ws/episode.xml")
	episode.SetChecksum(manifest.NewChecksum("md5", "0123456789abcdef"))
	episode.SetDescription("episode metadata")

	for _, el := range []manifest.Element{presenter, presentation, episode} {
		if err := m.Add(el); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	preview := manifest.NewAttachment(manifest.NewFlavor("presenter", "preview"), "https://cdn.example.com/preview.png")
	preview.ReferTo(manifest.ReferenceTo(presenter).WithProperty("time", "0"))
	if err := m.Add(preview); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	m := sampleManifest(t)
	data, err := manifestxml.Marshal(m, elementbuilder.Serializer{}, manifestxml.RenderContext{BaseDir: "/ws"})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	decoded, err := manifestxml.Unmarshal(data, newBuilder(), manifestxml.Options{})
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v\n%s", err, data)
	}
	if diff := deep.Equal(viewOf(decoded), viewOf(m)); diff != nil {
		t.Fatalf("round trip mismatch: %v\n%s", diff, data)
	}
	if !decoded.ID().Equal(m.ID()) {
		t.Fatalf("expected identifier %s, got %s", m.ID(), decoded.ID())
	}
}

func TestEncodeLayout(t *testing.T) {
	m := sampleManifest(t)
	data, err := manifestxml.Marshal(m, elementbuilder.Serializer{}, manifestxml.RenderContext{BaseDir: "/ws"})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		`id="` + m.ID().String() + `"`,
		`start="2024-03-09T14:30:00Z"`,
		`duration="60000"`,
		`<url>presenter.mp4</url>`,
		`<url>https://cdn.example.com/preview.png</url>`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s in\n%s", want, text)
		}
	}
	order := []string{"<media>", "<metadata>", "<attachments>"}
	last := -1
	for _, tag := range order {
		idx := strings.Index(text, tag)
		if idx < 0 || idx < last {
			t.Fatalf("group %s missing or out of order in\n%s", tag, text)
		}
		last = idx
	}
	if strings.Contains(text, "<unclassified") {
		t.Fatalf("empty unclassified group should be omitted:\n%s", text)
	}
	// tracks are sorted by locator: presenter.mp4 before slides.mp4
	if strings.Index(text, "presenter.mp4") > strings.Index(text, "slides.mp4") {
		t.Fatalf("tracks not sorted by locator:\n%s", text)
	}
}

func TestEncodeOmitsEmptyGroupsAndUnsetAttributes(t *testing.T) {
	m := manifest.New(identifier.ID{})
	unc := manifest.NewUnclassified(manifest.NewFlavor("misc", "raw"), "/ws/x.bin")
	if err := m.Add(unc); err != nil {
		t.Fatalf("Add: %v", err)
	}
	doc, err := manifestxml.Encode(m, elementbuilder.Serializer{}, manifestxml.RenderContext{})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if doc.Media != nil || doc.Metadata != nil || doc.Attachments != nil {
		t.Fatalf("expected empty groups to be nil: %+v", doc)
	}
	if doc.Unclassified == nil || len(doc.Unclassified.Elements) != 1 {
		t.Fatalf("expected one unclassified element")
	}
	var buf bytes.Buffer
	if err := manifestxml.Write(&buf, doc); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	text := buf.String()
	rootAttrs, children := rootShape(t, buf.Bytes())
	if len(rootAttrs) != 0 {
		t.Fatalf("expected no root attributes, got %v in\n%s", rootAttrs, text)
	}
	if strings.Join(children, ",") != "unclassified" {
		t.Fatalf("expected only the unclassified group, got %v in\n%s", children, text)
	}
	if !strings.Contains(text, `<element id="unknown-1" type="misc/raw">`) {
		t.Fatalf("expected unclassified element markup in\n%s", text)
	}

	decoded, err := manifestxml.Unmarshal(buf.Bytes(), newBuilder(), manifestxml.Options{})
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded.Size() != 0 {
		t.Fatalf("unclassified elements must not be decoded, got %d", decoded.Size())
	}
	if decoded.ID().IsZero() {
		t.Fatalf("expected a synthesized identifier")
	}
}

const missingTrackLocation = `<mediapackage id="10.0000/legacy-1" duration="1000">
  <media>
    <track id="track-1" type="presenter/source"><duration>1000</duration></track>
  </media>
</mediapackage>`

const missingCatalogLocation = `<mediapackage duration="1000">
  <media>
    <track id="track-1" type="presenter/source"><url>/ws/a.mp4</url><duration>1000</duration></track>
  </media>
  <metadata>
    <catalog id="catalog-1" type="dublincore/episode"></catalog>
  </metadata>
</mediapackage>`

func TestDecodeMissingTrackLocationAlwaysFails(t *testing.T) {
	for _, lenient := range []bool{false, true} {
		_, err := manifestxml.Unmarshal([]byte(missingTrackLocation), newBuilder(), manifestxml.Options{IgnoreMissingElements: lenient})
		if !errors.Is(err, manifest.ErrMissingElementFile) {
			t.Fatalf("lenient=%v: expected ErrMissingElementFile, got %v", lenient, err)
		}
		var elErr *manifestxml.ElementError
		if !errors.As(err, &elErr) {
			t.Fatalf("lenient=%v: expected *ElementError, got %T", lenient, err)
		}
		if elErr.Kind != manifest.KindTrack || elErr.ElementID != "track-1" || elErr.ErrorKind() != "not_found" {
			t.Fatalf("unexpected element error: %+v", elErr)
		}
	}
}

func TestDecodeMissingCatalogLocation(t *testing.T) {
	_, err := manifestxml.Unmarshal([]byte(missingCatalogLocation), newBuilder(), manifestxml.Options{})
	if !errors.Is(err, manifest.ErrMissingElementFile) {
		t.Fatalf("strict decode: expected ErrMissingElementFile, got %v", err)
	}

	m, err := manifestxml.Unmarshal([]byte(missingCatalogLocation), newBuilder(), manifestxml.Options{IgnoreMissingElements: true})
	if err != nil {
		t.Fatalf("lenient decode returned error: %v", err)
	}
	if m.Count(manifest.KindCatalog) != 0 || m.Count(manifest.KindTrack) != 1 {
		t.Fatalf("expected one track and no catalogs, got %d/%d", m.Count(manifest.KindTrack), m.Count(manifest.KindCatalog))
	}
}

func TestDecodeBuilderFailures(t *testing.T) {
	badCatalog := `<mediapackage><metadata><catalog id="c" type="broken"><url>/ws/c.xml</url></catalog></metadata></mediapackage>`
	badTrack := `<mediapackage><media><track id="t" type="broken"><url>/ws/t.mp4</url></track></media></mediapackage>`

	if _, err := manifestxml.Unmarshal([]byte(badCatalog), newBuilder(), manifestxml.Options{}); !errors.Is(err, manifest.ErrElementParse) {
		t.Fatalf("strict catalog: expected ErrElementParse, got %v", err)
	}
	m, err := manifestxml.Unmarshal([]byte(badCatalog), newBuilder(), manifestxml.Options{IgnoreMissingElements: true})
	if err != nil || m.Size() != 0 {
		t.Fatalf("lenient catalog should be skipped, got err=%v", err)
	}
	_, err = manifestxml.Unmarshal([]byte(badTrack), newBuilder(), manifestxml.Options{IgnoreMissingElements: true})
	if !errors.Is(err, manifest.ErrElementParse) {
		t.Fatalf("lenient track: expected ErrElementParse, got %v", err)
	}
	var elErr *manifestxml.ElementError
	if !errors.As(err, &elErr) || elErr.ErrorKind() != "validation" {
		t.Fatalf("expected validation element error, got %v", err)
	}
}

func TestDecodeAttributes(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantErr   error
		wantStart time.Time
		wantDur   int64
		wantID    identifier.Scheme
	}{
		{
			name:    "bad start is ignored",
			doc:     `<mediapackage start="yesterday" duration="5"/>`,
			wantDur: 5,
			wantID:  identifier.SchemeUUID,
		},
		{
			name:      "start with offset",
			doc:       `<mediapackage start="2024-03-09T16:30:00+02:00"/>`,
			wantStart: time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
			wantDur:   manifest.DurationUnset,
			wantID:    identifier.SchemeUUID,
		},
		{
			name:    "bad duration is fatal",
			doc:     `<mediapackage duration="long"/>`,
			wantErr: manifest.ErrMalformedManifest,
		},
		{
			name:    "legacy handle identifier",
			doc:     `<mediapackage id="10.0000/abc"/>`,
			wantDur: manifest.DurationUnset,
			wantID:  identifier.SchemeHandle,
		},
		{
			name:    "unparseable identifier",
			doc:     `<mediapackage id="not an id"/>`,
			wantErr: manifest.ErrMalformedManifest,
		},
		{
			name:    "wrong root",
			doc:     `<package/>`,
			wantErr: manifest.ErrMalformedManifest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := manifestxml.Unmarshal([]byte(tt.doc), newBuilder(), manifestxml.Options{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if !m.Start().Equal(tt.wantStart) {
				t.Fatalf("start = %v, want %v", m.Start(), tt.wantStart)
			}
			if m.Duration() != tt.wantDur {
				t.Fatalf("duration = %d, want %d", m.Duration(), tt.wantDur)
			}
			if m.ID().Scheme() != tt.wantID {
				t.Fatalf("id scheme = %s, want %s", m.ID().Scheme(), tt.wantID)
			}
		})
	}
}

func TestDecodeDuplicateIdentifierIsFatal(t *testing.T) {
	doc := `<mediapackage>
  <metadata>
    <catalog id="same" type="a/b"><url>/ws/a.xml</url></catalog>
  </metadata>
  <attachments>
    <attachment id="same" type="a/b"><url>/ws/b.png</url></attachment>
  </attachments>
</mediapackage>`
	_, err := manifestxml.Unmarshal([]byte(doc), newBuilder(), manifestxml.Options{IgnoreMissingElements: true})
	if !errors.Is(err, manifest.ErrDuplicateIdentifier) {
		t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
	}
}

// rootShape returns the attribute names of the document root and the names
// of its direct children.
func rootShape(t *testing.T, data []byte) ([]string, []string) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	var attrs, children []string
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return attrs, children
		}
		if err != nil {
			t.Fatalf("parse encoded document: %v", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 1:
				for _, a := range tok.Attr {
					attrs = append(attrs, a.Name.Local)
				}
			case 2:
				children = append(children, tok.Name.Local)
			}
		case xml.EndElement:
			depth--
		}
	}
}
