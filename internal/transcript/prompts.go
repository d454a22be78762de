package transcript

// FieldKeys is the fixed vocabulary of form-field identifiers the extraction
// stage may emit. Keys absent from the transcript are omitted, never guessed.
var FieldKeys = []string{
	"room", "name", "age-sex", "md", "allergies", "code-status", "isolation",
	"diagnosis", "history", "loc", "pupils", "sedation-pain", "delirium-score",
	"evd", "temperature", "hr-rhythm", "bp-map", "pulses", "pacemaker", "iabp",
	"o2-delivery", "vent-settings", "trach-airway", "breath-sounds", "diet",
	"abdomen", "urine-output", "iv-lines", "art-line", "central-line",
	"drains-tubes", "skin-integrity", "traction-fixators", "fractures-braces",
	"labs-diagnostics", "family-communication", "drips", "medications", "plan",
}

const cleaningPromptTemplate = `You are a highly skilled medical transcriptionist AI. Your task is to correct the following raw, potentially inaccurate %s from an ICU nurse.
- Correct any spelling and grammatical errors.
- Most importantly, correct any misspelled medical terminology, drug names, or clinical acronyms to their proper medical spelling. For example, if you see "leave a fed", correct it to "levophed". If you see "proper fall", correct it to "propofol".
- Do not summarize. Return only the corrected, clean version of the full transcript. No JSON, no commentary.

Raw transcript:
---
%s
---`

const extractionPromptTemplate = `You are an expert data extraction AI. Your task is to analyze the following CLEANED verbal report from an ICU nurse and parse the information into a structured JSON object.
The JSON object keys MUST correspond to these form field IDs:
%s

Extract the relevant information for each key from the text. If information for a key is not present, omit the key from the final JSON object. Every value must be a string.

Return ONLY the JSON object, no markdown fences or other text.

Cleaned transcript to analyze:
---
%s
---`
