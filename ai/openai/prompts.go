package openai

// analysisPromptTemplate instructs the model to return the call analysis as
// strict JSON. The transcript chunk is appended after the template.
const analysisPromptTemplate = `Analyze this call transcript and provide the following in JSON format:
{
    "summary": "Brief summary of key points discussed",
    "feature_requests": [
        {
            "request": "Description of feature request",
            "context": "The exact conversation sentences said around this request",
            "priority": "High/Medium/Low based on customer emphasis"
        }
    ],
    "sentiment": "Overall sentiment about the product (positive, negative, neutral)"
}

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or
acknowledgment. Start your response directly with the opening brace { and end
with the closing brace }. If no feature requests are voiced, return
"feature_requests": []. The JSON must parse without errors; no trailing commas,
no extra keys, and no extraneous text outside the object.

Transcript:
`

// chatSystemPrompt frames the conversational assistant over call data.
const chatSystemPrompt = `You are a helpful AI assistant with access to call transcript data.
When answering questions, use the context from call transcripts when provided, but you can also
answer general questions. Always be clear about what information comes from calls versus your
general knowledge.`
