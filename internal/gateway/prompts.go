package gateway

import (
	"fmt"
	"strings"

	"github.com/abhisek/lasi/internal/lang"
)

// pick returns the entry for l, falling back to English.
func pick(m map[lang.Language]string, l lang.Language) string {
	if s, ok := m[l]; ok {
		return s
	}
	return m[lang.English]
}

var simplifySystem = map[lang.Language]string{
	lang.English: "You are a creative and supportive teacher who teaches children to read with comprehension.",
	lang.Latvian: "Tu esi radošs un atbalstošs skolotājs, kurš māca bērnus lasīt ar izpratni.",
	lang.Spanish: "Eres un maestro creativo y solidario que enseña a los niños a leer con comprensión.",
	lang.Russian: "Ты творческий и поддерживающий учитель, который учит детей читать с пониманием.",
}

var simplifyTask = map[lang.Language]string{
	lang.English: `Rewrite the text below as a clear narrative a 14-year-old can follow.
Keep the key plot developments and the characters' intentions, the dialogue that carries action and motivation, the order of events and precise action verbs.
Write full paragraphs, not lists. Prefer moderately long sentences with a clear structure, simple concrete words, and no complex idioms or metaphors. Leave out extraneous detail.
Return only the simplified text with no commentary.

Text to simplify:
%s`,
	lang.Latvian: `Pārraksti tālāk doto tekstu tā, lai to viegli saprastu 14 gadus vecs bērns.
Saglabā stāsta galvenos pavērsienus un varoņu nodomus, dialogus, kas parāda rīcību un motivāciju, notikumu secību un precīzus darbības vārdus.
Raksti rindkopās, nevis punktos. Lieto vidēji garus, skaidrus teikumus, vienkāršus un konkrētus vārdus, bez sarežģītiem izteicieniem un metaforām. Izlaid lieko.
Atgriez tikai vienkāršoto tekstu bez paskaidrojumiem.

Teksts, kas jāvienkāršo:
%s`,
	lang.Spanish: `Reescribe el siguiente texto como una narración clara que un joven de 14 años pueda seguir.
Conserva los giros clave de la trama y las intenciones de los personajes, los diálogos que muestran acción y motivación, el orden de los hechos y los verbos de acción precisos.
Escribe en párrafos, sin listas. Usa oraciones de longitud moderada y estructura clara, palabras simples y concretas, sin modismos complejos ni metáforas. Omite los detalles superfluos.
Devuelve solo el texto simplificado, sin comentarios.

Texto a simplificar:
%s`,
	lang.Russian: `Перепиши текст ниже как ясное повествование, понятное 14-летнему читателю.
Сохрани ключевые повороты сюжета и намерения персонажей, диалоги, передающие действие и мотивацию, порядок событий и точные глаголы действия.
Пиши абзацами, без списков. Используй предложения средней длины с ясной структурой, простые конкретные слова, без сложных идиом и метафор. Опусти лишние детали.
Верни только упрощённый текст без комментариев.

Текст для упрощения:
%s`,
}

var levelHints = map[Level]string{
	LevelGentle:  "Focus on clarifying sentences but keep most original vocabulary.",
	LevelDefault: "Balance simplicity with original tone.",
	LevelDeep:    "Simplify aggressively using very short sentences and everyday vocabulary.",
}

func simplifyPrompt(text string, l lang.Language, level Level) string {
	return fmt.Sprintf(pick(simplifyTask, l), text) + "\n\nSimplification aim: " + levelHints[level]
}

const formatSystem = "You are an editor. Clean up formatting, fix missing capital letters, " +
	"break paragraphs at natural points and keep every word of the user's text. " +
	"Do not summarize, reword or translate; return the original text with better formatting."

var formatHints = map[lang.Language]string{
	lang.English: "Improve punctuation, spacing, and paragraphing in English.",
	lang.Latvian: "Uzlabo teikumu robežas, lielos sākumburtus un dialogu domuzīmes latviešu valodā.",
	lang.Spanish: "Mejora la puntuación y los saltos de línea en español.",
	lang.Russian: "Исправь пунктуацию и абзацы на русском языке.",
}

func formatPrompt(text string, l lang.Language) string {
	return pick(formatHints, l) + "\n\nText:\n" + text
}

var questionsSystem = map[lang.Language]string{
	lang.English: "You are a friendly teacher writing short reading-comprehension questions for children. " +
		"Each question is only the question text, with no answers. Write the questions only in English.",
	lang.Latvian: "Tu esi draudzīgs skolotājs, kurš raksta īsus teksta izpratnes jautājumus bērniem. " +
		"Katrs jautājums ir tikai jautājuma teksts, bez atbildēm. Jautājumi jāraksta tikai latviešu valodā.",
	lang.Spanish: "Eres un maestro amigable que escribe preguntas cortas de comprensión lectora para niños. " +
		"Cada pregunta es solo el texto de la pregunta, sin respuestas. Escribe las preguntas solo en español.",
	lang.Russian: "Ты дружелюбный учитель, который пишет короткие вопросы на понимание текста для детей. " +
		"Каждый вопрос - только текст вопроса, без ответов. Пиши вопросы только на русском языке.",
}

var difficultyHints = map[Difficulty]string{
	DifficultyEasy: "Make questions VERY simple (max 12 words) and focus on literal recall. " +
		"Use vocabulary suitable for early readers.",
	DifficultyChallenge: "Ask deeper inferential questions that require explaining reasons, feelings, or lessons.",
}

func questionsSystemPrompt(l lang.Language, d Difficulty) string {
	s := pick(questionsSystem, l)
	if hint := difficultyHints[d]; hint != "" {
		s += "\n" + hint
	}
	return s
}

// buildPrevious lists earlier questions so the model avoids repeating them.
func buildPrevious(previous []string, max int) string {
	if len(previous) == 0 {
		return ""
	}
	if max > 0 && len(previous) > max {
		previous = previous[len(previous)-max:]
	}
	var b strings.Builder
	b.WriteString("\n\nAvoid repeating these earlier questions:\n")
	for i, q := range previous {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

func questionsPrompt(fragment string, count int, previous []string) string {
	return fmt.Sprintf("Write exactly %d questions about this text.%s\n\nText:\n%s",
		count, buildPrevious(previous, maxPreviousQuestions), fragment)
}

func batchPrompt(fragments []string, indexes []int) string {
	var b strings.Builder
	b.WriteString("Write questions for each numbered fragment below. ")
	b.WriteString("Reply with one entry per fragment, using the fragment's number as its index, ")
	b.WriteString("and ask exactly the number of questions given for it.\n")
	for i, idx := range indexes {
		fmt.Fprintf(&b, "\nFragment %d (%d questions):\n%s\n", idx, questionCount(fragments[i]), fragments[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

var evaluateSystem = map[lang.Language]string{
	lang.English: "You are a teacher briefly evaluating a child's answer to a question about a text. " +
		"'feedback' is one short sentence about the answer. " +
		"'correct_snippet' is a SHORT quote from the text (max 20 words) that proves the correct answer; " +
		"choose the smallest phrase that contains the key information, not a whole paragraph. " +
		"'correct' is true if the answer is correct.",
	lang.Latvian: "Tu esi skolotājs, kas īsi vērtē bērna atbildi uz jautājumu par tekstu. " +
		"'feedback' ir viens īss teikums par atbildi. " +
		"'correct_snippet' ir ĪSS citāts no teksta (ne vairāk kā 20 vārdi), kas pierāda pareizo atbildi; " +
		"izvēlies mazāko frāzi, kas satur galveno informāciju, nevis veselu rindkopu. " +
		"'correct' ir true, ja atbilde ir pareiza.",
	lang.Spanish: "Eres un maestro que evalúa brevemente la respuesta de un niño a una pregunta sobre un texto. " +
		"'feedback' es una oración breve sobre la respuesta. " +
		"'correct_snippet' es una cita CORTA del texto (máximo 20 palabras) que prueba la respuesta correcta; " +
		"elige la frase más pequeña que contenga la información clave, no un párrafo completo. " +
		"'correct' es true si la respuesta es correcta. " +
		"Sé flexible con la ortografía y las tildes, pero verifica que la idea principal sea correcta.",
	lang.Russian: "Ты учитель, который кратко оценивает ответ ребёнка на вопрос по тексту. " +
		"'feedback' - одно короткое предложение об ответе. " +
		"'correct_snippet' - КОРОТКАЯ цитата из текста (не более 20 слов), доказывающая правильный ответ; " +
		"выбери минимальную фразу с ключевой информацией, а не целый абзац. " +
		"'correct' - true, если ответ правильный. " +
		"Будь гибким с орфографией и буквой ё, но проверяй, что основная идея правильна.",
}

var strictnessHints = map[Strictness]string{
	StrictnessGentle:   "Be encouraging and lenient. Accept answers that capture the main idea even if details differ.",
	StrictnessBalanced: "Be fair and balanced. Minor paraphrasing is acceptable, but the answer must mention the key idea.",
	StrictnessStrict:   "Be strict. The answer must closely match the referenced text and include precise details.",
}

func evaluateSystemPrompt(l lang.Language, s Strictness) string {
	return pick(evaluateSystem, l) + " " + strictnessHints[s]
}

func evaluatePrompt(fragment, question, answer string) string {
	return "Text:\n" + fragment + "\n\nQuestion:\n" + question + "\n\nChild's answer:\n" + answer
}
