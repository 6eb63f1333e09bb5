package i18n

// Translator retrieves localized messages for resolution error codes.
// data provides optional metadata to embed in the message (for example,
// "scheme" or "location").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "resource_error":
			msg = "リソースを読み込めません"
		case "lookup_error":
			msg = "参照先が見つかりません"
		case "invalid_pointer":
			msg = "JSON Pointer が不正です"
		case "consistency_error":
			msg = "URI の構成が不正です"
		case "unregistered_scheme":
			msg = "スキームにローダーが登録されていません"
		case "network_path":
			msg = "ネットワークパスはサポートされていません"
		case "registry_sealed":
			msg = "解決開始後はローダーを登録できません"
		case "ref_cycle":
			msg = "$ref が循環しています"
		}
	default: // "en"
		switch code {
		case "resource_error":
			msg = "resource could not be loaded"
		case "lookup_error":
			msg = "reference target not found"
		case "invalid_pointer":
			msg = "invalid JSON pointer"
		case "consistency_error":
			msg = "malformed reference URI"
		case "unregistered_scheme":
			msg = "unregistered scheme"
		case "network_path":
			msg = "network paths unsupported"
		case "registry_sealed":
			msg = "registry is sealed once resolution has started"
		case "ref_cycle":
			msg = "$ref cycle detected"
		}
	}
	if msg == "" {
		return code
	}
	if d := data["detail"]; d != "" {
		return msg + " (" + d + ")"
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
