package model

import "strings"

// DefaultScriptLanguage is used for expressions without an explicit language, as BPMN 2.0 defines.
const DefaultScriptLanguage = ScriptXPath

// ScriptLanguage describes the languages, a condition or script task can be written in.
type ScriptLanguage int

const (
	ScriptGroovy ScriptLanguage = iota + 1
	ScriptJava
	ScriptJavaScript
	ScriptJuel
	ScriptLua
	ScriptPython
	ScriptXPath
)

// MapScriptLanguage maps a schema reference (e.g. "http://www.javascript.com") or a case-insensitive
// language name (e.g. "javascript") to a script language.
func MapScriptLanguage(s string) (ScriptLanguage, bool) {
	switch s {
	case "http://groovy-lang.org":
		return ScriptGroovy, true
	case "http://www.java.com":
		return ScriptJava, true
	case "http://www.javascript.com":
		return ScriptJavaScript, true
	case "http://www.juel.org":
		return ScriptJuel, true
	case "http://www.lua.org":
		return ScriptLua, true
	case "http://www.python.org":
		return ScriptPython, true
	case "http://www.w3.org/1999/XPath":
		return ScriptXPath, true
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "groovy":
		return ScriptGroovy, true
	case "java":
		return ScriptJava, true
	case "javascript", "ecmascript", "js", "text/javascript":
		return ScriptJavaScript, true
	case "juel":
		return ScriptJuel, true
	case "lua":
		return ScriptLua, true
	case "python":
		return ScriptPython, true
	case "xpath":
		return ScriptXPath, true
	default:
		return 0, false
	}
}

func (v ScriptLanguage) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

// SchemaRef returns the URI, identifying the language within a BPMN definition.
func (v ScriptLanguage) SchemaRef() string {
	switch v {
	case ScriptGroovy:
		return "http://groovy-lang.org"
	case ScriptJava:
		return "http://www.java.com"
	case ScriptJavaScript:
		return "http://www.javascript.com"
	case ScriptJuel:
		return "http://www.juel.org"
	case ScriptLua:
		return "http://www.lua.org"
	case ScriptPython:
		return "http://www.python.org"
	case ScriptXPath:
		return "http://www.w3.org/1999/XPath"
	default:
		return ""
	}
}

func (v ScriptLanguage) String() string {
	switch v {
	case ScriptGroovy:
		return "GROOVY"
	case ScriptJava:
		return "JAVA"
	case ScriptJavaScript:
		return "JAVASCRIPT"
	case ScriptJuel:
		return "JUEL"
	case ScriptLua:
		return "LUA"
	case ScriptPython:
		return "PYTHON"
	case ScriptXPath:
		return "XPATH"
	default:
		return ""
	}
}

// A Script is an expression or program, stored together with its language.
// Scripts are classified by the model, but never executed by it.
type Script struct {
	Language ScriptLanguage
	Source   string
}

func (s Script) String() string {
	return s.Language.String() + ":" + s.Source
}
