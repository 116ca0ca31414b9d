package ask

import "fmt"

// Prompt templates over the single generate primitive. Each sub-step
// (answer, draft, rewrite, scoring, entities, paraphrases) differs only in
// its template.

const answerSystemPrompt = "You are an expert product consultant for a technical catalog. " +
	"Your knowledge is strictly limited to the products, materials, and specifications " +
	"in the provided context. If the question is unrelated to the catalog domain, " +
	"politely refuse and state that you only handle catalog inquiries. " +
	"Always use the provided context to justify your advice."

func answerPrompt(question, context string) string {
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s", answerSystemPrompt, context, question)
}

func draftPrompt(question, context string) string {
	return fmt.Sprintf(
		"Based on this partial context, provide a one-sentence hypothesis answering the question.\nContext: %s\nQuestion: %s",
		context, question,
	)
}

func rewritePrompt(query string) string {
	return fmt.Sprintf(
		"Rewrite the following user query into a more technical, catalog-friendly search term.\n"+
			"Focus on product keywords, materials, and specific article types.\n\n"+
			"Original: %s\nTechnical Search Term:",
		query,
	)
}

func relevancePrompt(question, context string) string {
	return fmt.Sprintf(
		"Rate the relevance of the following context to the user's question.\n"+
			"Question: %s\nContext: %s\n\n"+
			"Rate from 0.0 to 1.0 (float only, e.g., 0.85):",
		question, context,
	)
}

func entitiesPrompt(text string) string {
	return fmt.Sprintf(
		"Extract exactly 5 key product or component entities "+
			"(e.g., 'impact wrench', 'torque adapter') from this text. Separated by commas:\n\n%s",
		text,
	)
}

func variationsPrompt(query string) string {
	return fmt.Sprintf(
		"You are a search expert. Rewrite the query below into 3 distinct semantic variations "+
			"to improve catalog retrieval.\n"+
			"Avoid just changing synonyms; think about different technical aspects of the query.\n\n"+
			"Original Query: %s\n\n"+
			"Provide exactly 3 variations, one per line, no numbering:",
		query,
	)
}
