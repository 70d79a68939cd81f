package xml

import (
	"encoding/xml"

	"github.com/beevik/etree"
)

// Namespace URIs used by the package parts.
const (
	NSMain             = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSRelationships    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPackageRels      = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes     = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSCoreProperties   = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	NSExtendedProps    = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	NSDocPropsVTypes   = "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"
	NSDrawingML        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSPicture          = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	NSWordDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NSMarkupCompat     = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	NSMath             = "http://schemas.openxmlformats.org/officeDocument/2006/math"
	NSVML              = "urn:schemas-microsoft-com:vml"
	NSOffice           = "urn:schemas-microsoft-com:office:office"
	NSWord10           = "urn:schemas-microsoft-com:office:word"
	NSWordML           = "http://schemas.microsoft.com/office/word/2006/wordml"
	NSDublinCore       = "http://purl.org/dc/elements/1.1/"
	NSDublinCoreTerms  = "http://purl.org/dc/terms/"
	NSDublinCoreType   = "http://purl.org/dc/dcmitype/"
	NSSchemaInstance   = "http://www.w3.org/2001/XMLSchema-instance"
	RelationshipPrefix = NSRelationships + "/"
)

// DocumentNamespaces are declared on the root of the main document,
// header and footer parts, in declaration order.
var DocumentNamespaces = []Attr{
	{Name: "xmlns:ve", Value: NSMarkupCompat},
	{Name: "xmlns:o", Value: NSOffice},
	{Name: "xmlns:r", Value: NSRelationships},
	{Name: "xmlns:m", Value: NSMath},
	{Name: "xmlns:v", Value: NSVML},
	{Name: "xmlns:wp", Value: NSWordDrawing},
	{Name: "xmlns:a", Value: NSDrawingML},
	{Name: "xmlns:pic", Value: NSPicture},
	{Name: "xmlns:w10", Value: NSWord10},
	{Name: "xmlns:w", Value: NSMain},
	{Name: "xmlns:wne", Value: NSWordML},
}

// PartNamespaces are declared on the styles, settings and numbering parts.
var PartNamespaces = []Attr{
	{Name: "xmlns:r", Value: NSRelationships},
	{Name: "xmlns:w", Value: NSMain},
}

// NewRoot creates a root element carrying the given namespace
// declarations.
func NewRoot(name string, namespaces []Attr) *etree.Element {
	return New(name, namespaces...)
}

// Relationship represents a relationship in a .rels part
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships is the root element of a .rels part
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// DefaultType maps a file extension to a content type
type DefaultType struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// OverrideType maps an absolute part name to a content type
type OverrideType struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypes is the root element of [Content_Types].xml
type ContentTypes struct {
	XMLName   xml.Name       `xml:"Types"`
	Namespace string         `xml:"xmlns,attr"`
	Defaults  []DefaultType  `xml:"Default"`
	Overrides []OverrideType `xml:"Override"`
}

// MarshalPart serializes a typed package structure with the part header.
func MarshalPart(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(Header+"\n"), out...), nil
}
