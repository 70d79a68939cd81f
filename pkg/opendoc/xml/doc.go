// Package xml provides the element tree and package structures used to
// write DOCX parts.
//
// DOCX files are ZIP archives of XML parts. The writer builds each part as
// an etree element tree whose names carry their conventional prefix
// ("w:p", "w:rPr", "v:shape"), and declares the namespaces once on the
// root. Relationship and content type parts have a fixed shape and are
// marshalled from structs.
//
// # Structure Organization
//
//   - node.go: attribute and element helpers, part serialization
//   - package.go: namespace URIs, relationships and content type manifests
//
// Example of building a paragraph:
//
//	p := xml.New("w:p")
//	xml.Add(p, "w:r").CreateElement("w:t").SetText("Hello, world!")
//
// # XML Namespaces
//
// The main document declares, among others:
//   - w: WordprocessingML main namespace
//   - r: relationships, used by r:id attributes
//   - v and o: VML pictures
//   - wp, a, pic: DrawingML pictures
package xml
