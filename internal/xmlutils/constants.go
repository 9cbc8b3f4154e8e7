// Package xmlutils reads values out of XML documents with XPath, used by the XML
// exchange-rate feed.
package xmlutils

import "strings"

// Placeholders accepted in rate XPath templates.
const (
	PlaceholderFrom = "{from}"
	PlaceholderTo   = "{to}"
)

// XPath templates for common rate feeds.
const (
	// XPathCubeRate reads ECB-style <Cube currency="UYU" rate="..."/> elements.
	XPathCubeRate = "//Cube[@currency='{to}']/@rate"

	// XPathPairRate reads <rate from="USD" to="UYU">40.12</rate> elements.
	XPathPairRate = "//rate[@from='{from}'][@to='{to}']"

	XPathGenericRate = "//rate"
)

// ExpandXPath fills the currency placeholders of a template.
func ExpandXPath(template, from, to string) string {
	return strings.NewReplacer(PlaceholderFrom, from, PlaceholderTo, to).Replace(template)
}
