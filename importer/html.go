package importer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML возвращает текст без HTML-разметки и с раскрытыми сущностями.
// Заголовки DBLP встречаются с <i>, <sub> и &amp;.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
