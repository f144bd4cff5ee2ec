package rag

import "fmt"

// systemPrompt constrains answers to the retrieved documentation. The refusal
// sentence is fixed wording that the voice assistant and chat UI both expect.
const systemPrompt = "You are Aven's official AI support assistant. " +
	"Answer the user's question ONLY using the documentation context below. " +
	`If the answer is not clearly found in the context, respond: "I'm not sure based on the current information. Please contact Aven support for further help." ` +
	"Be clear, concise, and professional."

// userMessage embeds the grounding context and the question in the fixed
// template the model was prompted with during evaluation.
func userMessage(context, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, question)
}
