package llm

import (
	"fmt"
	"strings"
)

const defaultSystemPrompt = "너는 JSON만 출력하는 뉴스 분석기야. 반드시 순수 JSON만 반환해."

const userPromptTemplate = `너는 한국어 뉴스 기사를 분석하는 도우미야.

아래 뉴스 기사를 분석해서 JSON 형식으로만 출력해.

제목: %s

본문: %s

출력 형식(키 이름은 꼭 그대로 써):
{
  "summary": "한 문단 요약을 한국어로",
  "sentiment": "POSITIVE | NEUTRAL | NEGATIVE | HOPEFUL | FEARFUL | ANGRY | SAD 중 하나(대문자)",
  "keywords": ["키워드1", "키워드2", "키워드3"]
}

설명 문장 없이 JSON만 출력해.`

// maxContentRunes caps the article body sent to the model.
const maxContentRunes = 6000

func buildUserPrompt(title, content string) string {
	return fmt.Sprintf(userPromptTemplate, strings.TrimSpace(title), truncateRunes(strings.TrimSpace(content), maxContentRunes))
}

func systemPrompt(configured string) string {
	if p := strings.TrimSpace(configured); p != "" {
		return p
	}
	return defaultSystemPrompt
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
