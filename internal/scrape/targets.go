package scrape

import "fmt"

// BaseURL is the central association's unified disclosure page. Bank
// selection happens in-page, so every target shares it.
const BaseURL = "https://www.fsb.or.kr/busmagequar_0100.act"

// bankNames lists every member bank in presentation order. The aggregator
// restores this order after the pool completes.
var bankNames = []string{
	"다올", "대신", "더케이", "민국", "바로", "스카이", "신한", "애큐온", "예가람", "웰컴",
	"유안타", "조은", "키움YES", "푸른", "하나", "DB", "HB", "JT", "친애", "KB",
	"NH", "OK", "OSB", "SBI", "금화", "남양", "모아", "부림", "삼정", "상상인",
	"세람", "안국", "안양", "영진", "융창", "인성", "인천", "키움", "페퍼", "평택",
	"한국투자", "한화", "고려", "국제", "동원제일", "솔브레인", "에스앤티", "우리", "조흥", "진주",
	"흥국", "BNK", "DH", "IBK", "대백", "대아", "대원", "드림", "라온", "머스트", "삼일",
	"엠에스", "오성", "유니온", "참", "CK", "대한", "더블", "동양", "삼호",
	"센트럴", "스마트", "스타", "대명", "상상인플러스", "아산", "오투", "우리금융", "청주", "한성",
}

// Categories are the disclosure tabs scraped for each bank.
var Categories = []string{"영업개황", "재무현황", "손익현황", "기타"}

// Targets returns the full roster in presentation order.
func Targets() []Target {
	out := make([]Target, len(bankNames))
	for i, name := range bankNames {
		out[i] = Target{
			ID:   fmt.Sprintf("sb-%03d", i+1),
			Name: name,
			URL:  BaseURL,
		}
	}
	return out
}
