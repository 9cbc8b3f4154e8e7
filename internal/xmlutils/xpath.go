package xmlutils

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// ParseXML parses an XML document and returns its root node.
func ParseXML(r io.Reader) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// ExtractFromXML extracts values from an XML node using an XPath expression
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath %q: %w", xpath, err)
	}

	var values []string
	iter := path.Iter(root)
	for iter.Next() {
		values = append(values, CleanText(iter.Node().String()))
	}

	return values, nil
}

// FirstValue returns the first non-empty value matched by xpath.
func FirstValue(root *xmlpath.Node, xpath string) (string, error) {
	values, err := ExtractFromXML(root, xpath)
	if err != nil {
		return "", err
	}
	for _, v := range values {
		if v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no value at %s", xpath)
}

// CleanText collapses whitespace runs, including newlines and tabs, to single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
