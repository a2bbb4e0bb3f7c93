package manifestxml

import "mpkg/internal/manifest"

// RenderContext carries the target a serializer renders for.
type RenderContext struct {
	// BaseDir, when set, makes file locators under it relative.
	BaseDir string
}

// ElementSerializer renders one element to its XML node.
type ElementSerializer interface {
	Render(el manifest.Element, ctx RenderContext) (Node, error)
}

// ElementBuilder creates elements from XML nodes during decode and from raw
// locators during ad-hoc construction.
type ElementBuilder interface {
	ElementFromNode(node Node) (manifest.Element, error)
	ElementFromLocator(uri string, kind manifest.Kind, flavor manifest.Flavor) (manifest.Element, error)
}

// GroupName is the wrapper element of kind's group.
func GroupName(kind manifest.Kind) string {
	switch kind {
	case manifest.KindTrack:
		return "media"
	case manifest.KindCatalog:
		return "metadata"
	case manifest.KindAttachment:
		return "attachments"
	default:
		return "unclassified"
	}
}

// ElementName is the XML element name of kind inside its group.
func ElementName(kind manifest.Kind) string {
	switch kind {
	case manifest.KindTrack:
		return "track"
	case manifest.KindCatalog:
		return "catalog"
	case manifest.KindAttachment:
		return "attachment"
	default:
		return "element"
	}
}

// KindForElementName is the inverse of ElementName.
func KindForElementName(name string) (manifest.Kind, bool) {
	for _, k := range manifest.Kinds {
		if ElementName(k) == name {
			return k, true
		}
	}
	return 0, false
}
