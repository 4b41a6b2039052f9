package subscription

import "fmt"

// HelperScript builds the page-side helper that is injected into tabs at
// document start. It intercepts clicks on abp:subscribe style links, asks the
// user to confirm, and posts the subscription to the background service.
// Re-injection into the same document is a no-op.
func HelperScript(apiBase string) string {
	return fmt.Sprintf(`(() => {
  if (window.__abSubscribeHelper) { return; }
  window.__abSubscribeHelper = true;

  const API_BASE = %q;

  function parseSubscribeLink(href) {
    if (!href) { return null; }
    let raw = href;
    const prefixes = ["abp:subscribe?", "https://subscribe.adblockplus.org/?"];
    let qs = null;
    for (const p of prefixes) {
      if (raw.startsWith(p)) { qs = raw.slice(p.length); break; }
    }
    if (qs === null) { return null; }
    const params = new URLSearchParams(qs);
    const location = params.get("location");
    if (!location) { return null; }
    return { url: location, title: params.get("title") || "" };
  }

  document.addEventListener("click", (ev) => {
    const anchor = ev.target && ev.target.closest ? ev.target.closest("a[href]") : null;
    if (!anchor) { return; }
    const link = parseSubscribeLink(anchor.getAttribute("href"));
    if (!link) { return; }

    ev.preventDefault();
    ev.stopPropagation();

    const label = link.title || link.url;
    if (!window.confirm("Add filter subscription \"" + label + "\"?")) { return; }

    fetch(API_BASE + "/api/messages", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({
        type: "SubscribeToCustomFilter",
        data: { filter: { customUrl: link.url, name: link.title, trusted: false } }
      })
    }).catch(() => {});
  }, true);
})();`, apiBase)
}
