// =============================================================================
// EPICS Archive Config Converter - XML Writer Module
// =============================================================================
//
// This module renders channel groups as an archive engine configuration
// document. It handles the specific nesting structure required by the
// archive engine.
//
// XML STRUCTURE:
//   The generated XML follows this nesting pattern:
//
//   <engineconfig>                        <!-- Root element -->
//     <group>                             <!-- One element per channel group -->
//       <name>Default_Group</name>        <!-- Group name comes first -->
//       <channel>
//         <name>BL7:Mot:Parker:HROT.RBV</name>
//         <period>00:00:10</period>
//         <monitor/>                      <!-- Sampling mode, self-closing -->
//       </channel>
//       <channel>
//         <name>CF_BmLn:TT07108:T.HIHI</name>
//         <period>00:01:00</period>
//         <scan/>
//       </channel>
//     </group>
//   </engineconfig>
//
//   A monitor-mode channel with a value deadband renders the threshold as
//   element text instead of the self-closing form:
//
//       <monitor>0.5</monitor>
//
// The writer is deterministic: the same groups and options always produce
// byte-identical output.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/sbwebb/epics-archive-config/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string

	// RootAttributes are additional attributes for the root element.
	// Example: {"version": "1.0"}
	RootAttributes map[string]string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
		RootAttributes:        make(map[string]string),
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates an engine configuration document from the channel groups.
//
// PARAMETERS:
//   - groups: The channel groups in emission order.
//
// RETURNS:
//   - The XML document as a byte slice, ending with a newline.
//   - An error if generation fails.
func Generate(groups []types.ChannelGroup) ([]byte, error) {
	return GenerateWithOptions(groups, DefaultGenerateOptions())
}

// GenerateWithOptions creates an engine configuration document with custom
// options.
//
// GENERATION PROCESS:
//  1. Create the root element (engineconfig)
//  2. For each group:
//     a. Create the group element with its name child
//     b. For each channel: add name, period, and the mode element
//  3. Marshal the XML with proper indentation
func GenerateWithOptions(groups []types.ChannelGroup, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	// Write XML declaration if requested.
	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	// Build the XML document.
	doc := buildDocument(groups, options)

	// Marshal the document.
	xmlBytes, err := marshalWithIndent(doc, options.Indent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}

	buffer.Write(xmlBytes)

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLDocument represents the root of the XML document.
type XMLDocument struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Children   []interface{}
}

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr   `xml:",attr"`
	Value      string       `xml:",chardata"`
	Children   []XMLElement `xml:",any"`
}

// buildDocument constructs the XML document structure.
func buildDocument(groups []types.ChannelGroup, options GenerateOptions) *XMLDocument {
	doc := &XMLDocument{
		XMLName: xml.Name{Local: "engineconfig"},
	}

	// Add root attributes.
	for key, value := range options.RootAttributes {
		doc.Attributes = append(doc.Attributes, xml.Attr{
			Name:  xml.Name{Local: key},
			Value: value,
		})
	}

	// Add groups.
	for _, group := range groups {
		doc.Children = append(doc.Children, buildGroupElement(group))
	}

	return doc
}

// buildGroupElement constructs a group XML element.
//
// STRUCTURE:
//
//	<group>
//	  <name>Default_Group</name>
//	  <channel>...</channel>
//	  <channel>...</channel>
//	</group>
func buildGroupElement(group types.ChannelGroup) XMLElement {
	element := XMLElement{
		XMLName: xml.Name{Local: "group"},
	}

	// The group name always comes before the channels.
	element.Children = append(element.Children, createSimpleElement("name", group.Name))

	for _, channel := range group.Channels {
		element.Children = append(element.Children, buildChannelElement(channel))
	}

	return element
}

// buildChannelElement constructs a channel XML element.
//
// STRUCTURE:
//
//	<channel>
//	  <name>CF_BmLn:TT07108:T.HIHI</name>
//	  <period>00:01:00</period>
//	  <scan/>
//	</channel>
func buildChannelElement(channel types.ChannelDescriptor) XMLElement {
	element := XMLElement{
		XMLName: xml.Name{Local: "channel"},
	}

	element.Children = append(element.Children,
		createSimpleElement("name", channel.Name),
		createSimpleElement("period", channel.Period),
	)

	// The mode element is self-closing unless a monitor deadband was
	// assigned by a grouping rule.
	mode := createSimpleElement(channel.Mode, "")
	if channel.Mode == types.ModeMonitor && channel.Delta != "" {
		mode.Value = channel.Delta
	}
	element.Children = append(element.Children, mode)

	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// marshalWithIndent marshals the document with indentation.
func marshalWithIndent(doc *XMLDocument, indent string) ([]byte, error) {
	// Use a custom marshaling approach for better control.
	var buffer bytes.Buffer

	// Write the root element opening tag.
	buffer.WriteString("<")
	buffer.WriteString(doc.XMLName.Local)

	// Write root attributes.
	for _, attr := range doc.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value)))
	}

	buffer.WriteString(">\n")

	// Write children.
	for _, child := range doc.Children {
		switch c := child.(type) {
		case XMLElement:
			writeElement(&buffer, c, indent, 1)
		}
	}

	// Write the root element closing tag.
	buffer.WriteString("</")
	buffer.WriteString(doc.XMLName.Local)
	buffer.WriteString(">\n")

	return buffer.Bytes(), nil
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	// Write indentation.
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	// Write opening tag.
	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	// Write attributes.
	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value)))
	}

	// Check if element has children or value.
	if len(element.Children) == 0 && element.Value == "" {
		// Self-closing tag.
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	// Write value or children.
	if element.Value != "" {
		// Simple element with text value.
		buffer.WriteString(escapeXML(element.Value))
	} else {
		// Element with children.
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		// Write indentation for closing tag.
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	// Write closing tag.
	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
