package intercom

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// Sanitize Intercom 메시지 본문(HTML)을 Slack에 표시할 평문으로 변환합니다.
//
// 처리 순서:
//  1. <br>, <br/>, <br /> -> 줄바꿈
//  2. 문단 경계(</p><p>) -> 줄바꿈
//  3. 남은 <p> 제거
//  4. 나머지 태그를 모두 제거하고 HTML 엔티티를 디코딩
//
// 이미 평문인 입력에는 아무 변화도 주지 않습니다.
// 단, 결과에 엔티티 디코딩으로 생긴 '<'나 '&'가 있으면 다시 적용했을 때 결과가 달라질 수 있습니다.
func Sanitize(body string) string {
	s := lineBreakTag.ReplaceAllString(body, "\n")
	s = strings.ReplaceAll(s, "</p><p>", "\n")
	s = strings.ReplaceAll(s, "<p>", "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	return doc.Text()
}
