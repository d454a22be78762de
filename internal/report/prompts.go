package report

import (
	"encoding/json"
	"fmt"
)

// Disclaimer is appended to every AI suggestion. The model is instructed to
// end the suggestion with this exact sentence; the UI renders it verbatim.
const Disclaimer = "This is an AI-generated suggestion and is not a substitute for clinical judgment; verify with your unit's protocols and the attending physician."

const sbarPromptTemplate = `You are an expert Canadian ICU nurse preparing a verbal handoff report for the next nurse, with a physician-perspective reviewer adding suggestions.
Based on the following patient data, generate a clear, concise, and professional SBAR (Situation, Background, Assessment, Recommendation) report.
Synthesize the data into a coherent narrative. Do not just list the data. Focus on the most critical information.
Use Canadian medical terminology and units (e.g., mmol/L).

Patient Data:
%s

Respond with a JSON object containing exactly these keys: "situation", "background", "assessment", "recommendation", "ai_suggestion".

Formatting constraints:
- Every value MUST be a single string. Never return nested objects or arrays.
- "assessment" is one string organised head-to-toe by system, one system per line, in this order: Neurological, Cardiovascular, Respiratory, Gastrointestinal/Genitourinary, Skin/Extremities. Include a Labs & Diagnostics line and a Pharmacology & Drips line when the data supports them.
- "ai_suggestion" is a high-level physician-perspective note on anything the receiving nurse should watch for (safety concerns first), and MUST end with this exact sentence: %s
- Return ONLY the JSON object. No surrounding prose, no markdown code fences.`

// BuildPrompt renders the instruction string for one generation request.
// Deterministic for identical input: patient data is embedded as indented
// JSON, which marshals map keys in sorted order.
func BuildPrompt(patientData map[string]string) string {
	data, err := json.MarshalIndent(patientData, "", "  ")
	if err != nil {
		// A map[string]string cannot fail to marshal.
		data = []byte("{}")
	}
	return fmt.Sprintf(sbarPromptTemplate, data, Disclaimer)
}
