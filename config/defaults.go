package config

// Defaults returns the configuration every application starts from. The key
// names and values are a compatibility contract with deployment configuration
// files and must not change.
func Defaults() map[string]any {
	return map[string]any{
		"debug":                  false,
		"package":                nil,
		"tg.app_globals":         nil,
		"tg.strict_tmpl_context": true,
		"i18n.lang":              nil,
	}
}
