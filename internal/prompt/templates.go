package prompt

import "github.com/BerylCAtieno/documind/internal/models"

const defaultCustomInstruction = "Analyze the actual text content of this document."

var taskTemplates = map[models.AnalysisTask]string{
	models.TaskSummary: `You are a document analyst. Read the ENTIRE TEXT carefully and provide a comprehensive summary.

CRITICAL RULES:
- Focus ONLY on the actual TEXT CONTENT of the document
- IGNORE any PDF metadata, compression info, or file structure details
- Extract and summarize the READABLE TEXT only
- Include specific details, facts, and information from the actual content

Provide:
1. Main topics and themes from the text
2. Key points and arguments
3. Important details and facts mentioned
4. Main conclusions`,

	models.TaskKeyPoints: `Extract the key points from the ACTUAL TEXT CONTENT of this document.

CRITICAL RULES:
- Read ONLY the readable text, NOT PDF structure/metadata
- Extract 8-12 important points from what the text actually says
- Include specific facts, names, numbers from the content
- Format as clear bullet points`,

	models.TaskSentiment: `Analyze the sentiment and tone of the ACTUAL TEXT in this document.

Cover the overall sentiment, the emotional tone and language style, any notable shifts, and the apparent audience and intent.

Focus on the written content and language used, not file metadata or binary data.`,

	models.TaskQA: `Generate 10 questions and answers based on the ACTUAL TEXT CONTENT.

Format as:
Q1: [Question]
A1: [Answer with context from the text]

CRITICAL: Base questions on what the document actually says, not on PDF structure or binary data.`,

	models.TaskEntities: `Extract named entities from the ACTUAL TEXT CONTENT:
- People and their roles
- Organizations mentioned
- Locations referenced
- Dates and times
- Important numbers and statistics

ONLY extract from readable text, ignore PDF metadata and binary data.`,

	models.TaskClassification: `Classify this document based on its ACTUAL TEXT CONTENT:
- Type and purpose
- Subject matter
- Target audience
- Writing style

Focus on the content, not file format, metadata or binary data.`,

	models.TaskTopics: `Identify 5-7 main topics from the ACTUAL TEXT CONTENT with examples and explanations.

Show how the topics relate to each other. Ignore PDF structure, metadata and binary data.`,
}

// BatchStep is one fixed sub-analysis of the advanced report.
type BatchStep struct {
	Name        string
	Instruction string
}

// AdvancedSteps run in this order, one request each.
var AdvancedSteps = []BatchStep{
	{
		Name:        "Executive Summary",
		Instruction: "Provide a comprehensive 3-4 paragraph summary of the ACTUAL TEXT CONTENT. Focus on what the text says, not file metadata.",
	},
	{
		Name:        "Key Insights",
		Instruction: "Extract 7-10 key insights from the TEXT CONTENT with specific details and examples from what is written.",
	},
	{
		Name:        "Named Entities",
		Instruction: "Extract all named entities (people, organizations, locations, dates) from the ACTUAL TEXT. Ignore PDF metadata.",
	},
	{
		Name:        "Main Themes",
		Instruction: "Identify the main themes and topics discussed in the TEXT CONTENT.",
	},
	{
		Name:        "Key Takeaways",
		Instruction: "List the most important takeaways and conclusions from the TEXT CONTENT.",
	},
}
