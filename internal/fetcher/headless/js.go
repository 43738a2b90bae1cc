package headless

import "fmt"

// tableReadyScript is polled until the rendered page contains at least one
// data row.
const tableReadyScript = `document.readyState === 'complete' && document.querySelectorAll('table tr').length > 0`

// disclosureDateScript pulls the reporting period (e.g. "2024년9월말") out of
// the page text. Empty string when no date is present.
const disclosureDateScript = `(() => {
	const pattern = /(\d{4}년\s*\d{1,2}월말)/;
	const match = document.body.innerText.match(pattern);
	return match ? match[1].replace(/\s+/g, '') : '';
})()`

// selectBankScript clicks the bank's entry in the portal's bank list.
// Prefers an exact text match, then falls back to the shortest containing
// match so "우리" never steals a click meant for "우리금융".
func selectBankScript(name string) string {
	return fmt.Sprintf(`(() => {
	const wanted = %q;
	const candidates = Array.from(document.querySelectorAll('a, td'));
	const click = (el) => {
		el.scrollIntoView({block: 'center', inline: 'nearest'});
		if (el.tagName === 'TD' && el.querySelector('a')) {
			el.querySelector('a').click();
		} else {
			el.click();
		}
		return true;
	};
	const exact = candidates.find(el => el.textContent && el.textContent.trim() === wanted);
	if (exact) return click(exact);
	const partial = candidates
		.filter(el => el.textContent && el.textContent.trim().includes(wanted))
		.sort((a, b) => a.textContent.trim().length - b.textContent.trim().length);
	if (partial.length > 0) return click(partial[0]);
	return false;
})()`, name)
}

// selectCategoryScript clicks a category tab (영업개황, 재무현황, ...).
func selectCategoryScript(category string) string {
	return fmt.Sprintf(`(() => {
	const wanted = %q.replace(/\s+/g, '');
	const candidates = Array.from(document.querySelectorAll('a, li, button, span, div[role="tab"]'));
	const target = candidates.find(el =>
		el.textContent && el.textContent.replace(/\s+/g, '').includes(wanted));
	if (!target) return false;
	target.scrollIntoView({block: 'center', inline: 'nearest'});
	target.click();
	return true;
})()`, category)
}
