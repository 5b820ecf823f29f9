package summary

import "fmt"

const structuredTemplate = `Generate an EXTREMELY DETAILED structured summary of this document with these EXACT sections:

1. **OVERVIEW** - Provide a comprehensive 3-4 paragraph summary covering:
   - Main purpose and objectives
   - Core thesis or argument
   - Key context and background
   - Overall significance

2. **KEY FINDINGS** - List ALL important findings as:
   - Detailed bullet points (10-15 items)
   - Include specific data points where available
   - Note any surprising or counterintuitive results

3. **METHODOLOGIES** - Describe ALL approaches used:
   - Research methods and techniques
   - Data collection procedures
   - Analysis frameworks
   - Any innovative methodologies

4. **RECOMMENDATIONS** - Provide complete suggested actions:
   - Immediate next steps
   - Long-term proposals
   - Policy implications
   - Future research directions

Document:
%s
`

const sectionTemplate = `Generate an EXTREMELY DETAILED %s section for this document.
Include all relevant details, examples, and specific information. Document excerpt:

%s`

const enhanceTemplate = `Expand this %s section with more details, examples, and analysis:

%s`

const fallbackTemplate = `Generate a comprehensive summary of this document:

%s`

// sectionQueries are the retrieval queries used to gather context for one section.
var sectionQueries = map[Section]string{
	Overview:        "main purpose, objectives, core thesis, background and significance of the work",
	KeyFindings:     "key results, findings, measurements, data points and conclusions",
	Methodologies:   "methods, experimental setup, data collection, analysis techniques and models used",
	Recommendations: "recommendations, implications, limitations and directions for future work",
}

// StructuredPrompt asks for all four numbered, bold-labelled sections at once.
func StructuredPrompt(text string) string {
	return fmt.Sprintf(structuredTemplate, text)
}

// SectionPrompt asks for a single section over the given document context.
func SectionPrompt(sec Section, context string) string {
	return fmt.Sprintf(sectionTemplate, sec.Label(), context)
}

// EnhancePrompt asks the model to expand an existing section.
func EnhancePrompt(sec Section, content string) string {
	return fmt.Sprintf(enhanceTemplate, sec.Label(), content)
}

// FallbackPrompt asks for a plain whole-document summary.
func FallbackPrompt(text string) string {
	return fmt.Sprintf(fallbackTemplate, text)
}
