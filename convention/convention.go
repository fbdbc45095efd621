// Package convention derives the standard CRUD permission codes of a
// resource from its name, e.g. ServerProduct -> access_server_products,
// view_server_product, create_server_product, edit_server_product,
// delete_server_product.
package convention

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// Action is one of the standard CRUD operations of an admin resource.
type Action string

const (
	ActionIndex  Action = "index"
	ActionDetail Action = "detail"
	ActionNew    Action = "new"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists every standard action in a stable order.
func Actions() []Action {
	return []Action{ActionIndex, ActionDetail, ActionNew, ActionEdit, ActionDelete}
}

// Mapping associates actions with permission codes.
type Mapping map[Action]string

// Slug converts a CamelCase resource name to snake_case by inserting an
// underscore before every interior capital.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Plural pluralises a slug using English inflection rules. Only the last
// word of a compound slug is inflected.
func Plural(slug string) string {
	if slug == "" {
		return slug
	}
	head, last := "", slug
	if i := strings.LastIndexByte(slug, '_'); i >= 0 {
		head, last = slug[:i+1], slug[i+1:]
	}
	p := inflection.Plural(last)
	if p == "" {
		p = last + "s"
	}
	return head + p
}

// Derive returns the conventional mapping for a resource name.
func Derive(name string) Mapping {
	singular := Slug(name)
	plural := Plural(singular)
	return Mapping{
		ActionIndex:  "access_" + plural,
		ActionDetail: "view_" + singular,
		ActionNew:    "create_" + singular,
		ActionEdit:   "edit_" + singular,
		ActionDelete: "delete_" + singular,
	}
}
