// Package names splits CSS keywords and property names into their vendor,
// hack and custom parts.
package names

import (
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/cache"
)

// minVendorPrefixLen is the shortest name that can carry a vendor prefix: "-x-".
const minVendorPrefixLen = 3

// Keyword describes a keyword such as "-webkit-box".
type Keyword struct {
	Basename string
	Name     string
	Prefix   string
	Vendor   string
	Custom   bool
}

// Property describes a property name such as "*-moz-margin" or "--main".
type Property struct {
	Basename string
	Name     string
	Hack     string
	Vendor   string
	Prefix   string
	Custom   bool
}

// Resolver memoizes keyword and property descriptions.
type Resolver struct {
	keywords   *cache.LRU[string, Keyword]
	properties *cache.LRU[string, Property]
}

// NewResolver creates a Resolver whose caches hold up to size entries each.
func NewResolver(size int) *Resolver {
	return &Resolver{
		keywords:   cache.NewLRU[string, Keyword](size),
		properties: cache.NewLRU[string, Property](size),
	}
}

var defaultResolver = NewResolver(cache.DefaultLRUSize)

// Default returns the process-wide resolver.
func Default() *Resolver {
	return defaultResolver
}

// IsCustomProperty reports whether str has a "--" prefix at offset.
func IsCustomProperty(str string, offset int) bool {
	return len(str)-offset >= 2 && str[offset] == '-' && str[offset+1] == '-'
}

// VendorPrefix returns the "-vendor-" prefix of str at offset, or "".
func VendorPrefix(str string, offset int) string {
	if len(str)-offset >= minVendorPrefixLen && str[offset] == '-' && str[offset+1] != '-' {
		if end := strings.IndexByte(str[offset+2:], '-'); end != -1 {
			return str[offset : offset+2+end+1]
		}
	}

	return ""
}

// Keyword describes a keyword. Keywords are case-insensitive.
func (resolver *Resolver) Keyword(keyword string) Keyword {
	return resolver.keywords.GetOrCompute(keyword, func() Keyword {
		name := strings.ToLower(keyword)
		custom := IsCustomProperty(name, 0)

		vendor := ""
		if !custom {
			vendor = VendorPrefix(name, 0)
		}

		return Keyword{
			Basename: name[len(vendor):],
			Name:     name,
			Prefix:   vendor,
			Vendor:   vendor,
			Custom:   custom,
		}
	})
}

// propertyHack returns the IE hack prefix of a property name.
func propertyHack(property string) string {
	if property == "" {
		return ""
	}

	switch property[0] {
	case '/':
		if strings.HasPrefix(property, "//") {
			return "//"
		}

		return "/"
	case '_', '*', '$', '#', '+', '&':
		return property[:1]
	default:
		return ""
	}
}

// Property describes a property name. Custom properties keep their case.
func (resolver *Resolver) Property(property string) Property {
	return resolver.properties.GetOrCompute(property, func() Property {
		hack := propertyHack(property)
		name := property
		custom := IsCustomProperty(name, len(hack))

		if !custom {
			name = strings.ToLower(name)
		}

		vendor := ""
		if !custom {
			vendor = VendorPrefix(name, len(hack))
		}

		prefix := name[:len(hack)+len(vendor)]

		return Property{
			Basename: name[len(prefix):],
			Name:     name[len(hack):],
			Hack:     hack,
			Vendor:   vendor,
			Prefix:   prefix,
			Custom:   custom,
		}
	})
}

// KeywordOf describes keyword with the default resolver.
func KeywordOf(keyword string) Keyword {
	return defaultResolver.Keyword(keyword)
}

// PropertyOf describes property with the default resolver.
func PropertyOf(property string) Property {
	return defaultResolver.Property(property)
}

// CSS-wide keywords accepted by every property.
var cssWideKeywords = []string{"initial", "inherit", "unset", "revert", "revert-layer"}

// CSSWideKeywords returns the keywords every property accepts.
func CSSWideKeywords() []string {
	return append([]string(nil), cssWideKeywords...)
}

// IsCSSWideKeyword reports whether name is a CSS-wide keyword.
func IsCSSWideKeyword(name string) bool {
	for _, keyword := range cssWideKeywords {
		if strings.EqualFold(keyword, name) {
			return true
		}
	}

	return false
}
