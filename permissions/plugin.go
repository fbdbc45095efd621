package permissions

import "strings"

// PluginNamespace is the prefix every plugin-owned code starts with.
const PluginNamespace = "PLUGIN_"

// PluginPrefix returns the code prefix reserved for a plugin:
// "my-plugin" -> "PLUGIN_MY_PLUGIN".
func PluginPrefix(pluginName string) string {
	return PluginNamespace + strings.ToUpper(strings.ReplaceAll(pluginName, "-", "_"))
}

// PluginSection returns the UI section for a plugin's permissions.
func PluginSection(pluginName string) string {
	return "plugin_" + pluginName
}

// HasPluginPrefix reports whether code lies in pluginName's namespace.
// The prefix must end at a "_" boundary so that PLUGIN_FOO does not claim
// PLUGIN_FOOBAR_X.
func HasPluginPrefix(code, pluginName string) bool {
	prefix := PluginPrefix(pluginName)
	if code == prefix {
		return true
	}
	return strings.HasPrefix(code, prefix+"_")
}

// PrefixOwner returns the plugin among candidates whose namespace is the
// longest match for code. ok is false when no candidate matches, or when two
// distinct plugins share the longest namespace ("foo-bar" and "foo_bar").
func PrefixOwner(code string, candidates []string) (owner string, ok bool) {
	best := -1
	for _, name := range candidates {
		if !HasPluginPrefix(code, name) {
			continue
		}
		switch l := len(PluginPrefix(name)); {
		case l > best:
			best, owner, ok = l, name, true
		case l == best && name != owner:
			ok = false
		}
	}
	if !ok {
		return "", false
	}
	return owner, true
}
