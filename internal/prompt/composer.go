// Package prompt turns extracted text into the instruction sent to the
// generation model. Document content is always cut to a fixed number of
// characters and fenced by sentinel lines.
package prompt

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/utils"
)

const (
	AnalysisCap = 40000
	ChatCap     = 40000
	BatchCap    = 35000

	SentinelStart = "======== DOCUMENT TEXT CONTENT START ========"
	SentinelEnd   = "======== DOCUMENT TEXT CONTENT END ========"

	NotFoundAnswer = "I cannot find this information in the document text."
)

// Truncate keeps the first max characters of text. No attempt is made to
// stop on a word or sentence boundary.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}

// Instruction returns the fixed template for task. A blank custom prompt
// falls back to a generic instruction.
func Instruction(task models.AnalysisTask, custom string) (string, error) {
	if task == models.TaskCustom {
		if strings.TrimSpace(custom) == "" {
			return defaultCustomInstruction, nil
		}
		return custom, nil
	}

	tmpl, ok := taskTemplates[task]
	if !ok {
		return "", utils.NewValidationError(fmt.Sprintf("unknown analysis type %q", task))
	}
	return tmpl, nil
}

// Analysis builds the prompt for a single analysis run.
func Analysis(task models.AnalysisTask, custom, text string) (string, error) {
	instruction, err := Instruction(task, custom)
	if err != nil {
		return "", err
	}

	return instruction + "\n\n" + fence(Truncate(text, AnalysisCap)) + `

IMPORTANT: Analyze the TEXT CONTENT above. Focus on what the text actually says, NOT on PDF structure, image data, or file metadata.

Your analysis:`, nil
}

// Chat builds the prompt for one question against the document.
func Chat(question, text string) string {
	return `You are a helpful document Q&A assistant. Answer questions based ONLY on the ACTUAL TEXT CONTENT of the document.

CRITICAL RULES:
- Focus on the readable text content, NOT PDF metadata or file structure
- Answer using information from what the text actually says
- If the answer is not in the text content, say: "` + NotFoundAnswer + `"
- Be accurate and reference specific parts of the text

` + fence(Truncate(text, ChatCap)) + `

USER QUESTION: ` + question + `

Answer based on the text content above:`
}

// Batch builds the prompt for one advanced-report step.
func Batch(step BatchStep, text string) string {
	return step.Instruction + "\n\n" + fence(Truncate(text, BatchCap)) + `

IMPORTANT: Analyze the TEXT CONTENT, not PDF structure or metadata.

Your analysis:`
}

// EmbeddedDocument returns the text between the sentinels of a composed
// prompt, or false when the prompt has no fenced document.
func EmbeddedDocument(prompt string) (string, bool) {
	start := strings.Index(prompt, SentinelStart+"\n")
	if start < 0 {
		return "", false
	}
	start += len(SentinelStart) + 1

	end := strings.LastIndex(prompt, "\n"+SentinelEnd)
	if end < start {
		return "", false
	}
	return prompt[start:end], true
}

func fence(text string) string {
	return SentinelStart + "\n" + text + "\n" + SentinelEnd
}
