// Package extract 负责从网页 HTML 中抽取正文文本与页面元数据。
package extract

import (
	"regexp"
	"strings"
	"truelens-go/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// articleSelectors 按优先级排列的正文容器选择器。
// 命中第一个含有效文本的选择器即停止，顺序就是语义优先级。
var articleSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".article-content",
	".post-content",
	".entry-content",
	".content",
}

// noiseSelector 匹配需要在取文本前剔除的非正文节点。
const noiseSelector = "script, style, nav, footer"

// MinArticleChars 是判定页面含有文章正文的最小字符数。
const MinArticleChars = 100

var whitespaceRe = regexp.MustCompile(`\s+`)

// ArticleText 从 HTML 文档中抽取文章正文。
// 第一个存在的正文容器即被选中（哪怕它没有文本），都不存在时回退到 body。
// 返回的文本已折叠空白并截断到 maxChars 个字符（按 rune 计）。
func ArticleText(doc *goquery.Document, maxChars int) string {
	for _, sel := range articleSelectors {
		if container := doc.Find(sel).First(); container.Length() > 0 {
			return truncate(textOf(container), maxChars)
		}
	}
	return truncate(textOf(doc.Find("body")), maxChars)
}

// HasArticle 判断抽取出的文本是否足以构成一篇文章。
func HasArticle(text string) bool {
	return len(strings.TrimSpace(text)) > MinArticleChars
}

// Metadata 抽取页面标题与描述。pageURL 由调用方提供，文档本身不可靠。
func Metadata(doc *goquery.Document, pageURL string) model.PageMetadata {
	description, _ := doc.Find(`meta[name="description"]`).Attr("content")
	return model.PageMetadata{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		URL:         pageURL,
		Description: strings.TrimSpace(description),
	}
}

// textOf 返回选区剔除噪声节点后的折叠文本。选区为空时返回空串。
func textOf(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	clone := sel.Clone()
	clone.Find(noiseSelector).Remove()
	return collapse(clone.Text())
}

// collapse 把所有连续空白（含换行）折叠为单个空格并去掉首尾空白。
func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// truncate 按 rune 截断，避免把多字节字符切成半个。
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
