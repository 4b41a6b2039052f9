package cdpcontrol

import (
	"encoding/json"
	"fmt"
)

// JSString encodes a Go string as a JS string literal.
func JSString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// WrapJSEval wraps a JS body into the standard IIFE envelope the control
// plane expects back from Runtime.evaluate: a JSON string of
// {ok, data, error_code, error_message}. The body must return the value to
// place in data, or throw.
func WrapJSEval(body string) string {
	return fmt.Sprintf(`(() => {
  try {
    const __result = (() => { %s })();
    return JSON.stringify({ ok: true, data: __result === undefined ? null : __result });
  } catch (e) {
    return JSON.stringify({ ok: false, error_code: "EVAL_FAILURE", error_message: String(e && e.message || e) });
  }
})()`, body)
}
