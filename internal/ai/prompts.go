// prompts.go - Prompt templates for article generation

package ai

// articleInstruction asks for a markdown blog post of at least 5000 characters
// based on the OCR text that follows it.
const articleInstruction = "다음은 캡처된 이미지들에서 추출한 텍스트입니다. 이 내용을 바탕으로 5000자 이상의 블로그 포스팅을 작성해주세요. (마크다운 가독성 최적화):\n\n"

// Prompt is the two-message conversation sent to the LLM
type Prompt struct {
	System string
	User   string
}

// BuildArticlePrompt embeds the combined OCR text in the fixed user template.
func BuildArticlePrompt(systemPrompt, combinedText string) Prompt {
	return Prompt{
		System: systemPrompt,
		User:   articleInstruction + combinedText,
	}
}
