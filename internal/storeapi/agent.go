package storeapi

import (
	"fmt"

	"github.com/dunglas/httpsfv"
)

// agentHeaderName carries a structured self-description of the client so
// backend logs can tell CLI, server and agent traffic apart.
// Format (RFC 8941 Dictionary): name="storefront", version="1.0.0"
const agentHeaderName = "Storefront-Agent"

// agentHeader serializes the Storefront-Agent dictionary. Empty name yields
// no header.
func agentHeader(name, version string) (string, error) {
	if name == "" {
		return "", nil
	}

	dict := httpsfv.NewDictionary()
	dict.Add("name", httpsfv.NewItem(name))
	if version != "" {
		dict.Add("version", httpsfv.NewItem(version))
	}

	s, err := httpsfv.Marshal(dict)
	if err != nil {
		return "", fmt.Errorf("encoding %s header: %w", agentHeaderName, err)
	}
	return s, nil
}

// ParseAgentHeader reads the name and version back out of a
// Storefront-Agent value.
func ParseAgentHeader(header string) (name, version string, err error) {
	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return "", "", fmt.Errorf("invalid %s header: %w", agentHeaderName, err)
	}

	name, err = dictString(dict, "name")
	if err != nil {
		return "", "", err
	}
	if _, ok := dict.Get("version"); ok {
		if version, err = dictString(dict, "version"); err != nil {
			return "", "", err
		}
	}
	return name, version, nil
}

func dictString(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", fmt.Errorf("%s key not found in %s header", key, agentHeaderName)
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}
	s, ok := item.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s value must be a string", key)
	}
	return s, nil
}
