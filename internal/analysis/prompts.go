package analysis

// Prompt templates for the four completion stages. The wording is fixed so
// replies stay parseable by the extract package.
const (
	vendorPrompt = "Extract the vendor code of this document or image. " +
		"Reply with the vendor code only, without any other comment."

	analysisPrompt = `This document is a datasheet for a circuit component.
1. Analyze the datasheet or schematic image.
2. Find the vendor code in the datasheet and analyze that part's datasheet.
3. Describe what is needed to design the PCB artwork.
4. Answer using the following report format.

## 1. IC datasheet analysis
### 1.1 Key features
* Bullet list of electrical characteristics (voltage ranges, output current, switching frequency, protection features).

### 1.2 Pinout and pin functions
| Pin | Name | Function |
|-----|------|----------|

### 1.3 Recommended external components and reference circuit
* Bullet list of recommended capacitors, inductors, diodes and resistor dividers with values.

## 2. PCB artwork information
* Clearance and trace length guidance between specific components.
* Net-to-net clearance information.
* Routing cautions and any other artwork clearance guidance.
* Physical part information needed to build a library (pin pitch, package dimensions).`

	tagPrompt = `1. Produce IC tag information as JSON so it can be used as search metadata.
2. You may create tags with names not present in the example.
3. If a datasheet was analyzed, a tag named Model is mandatory. If no vendor code was found, do not create the Model tag.
Example:
` + "```" + `
[
    {"Name": "Model", "Description": "MAX5033A"},
    {"Name": "Input voltage", "Description": "10.5V DC"},
    {"Name": "Output voltage", "Description": "3.3V DC"},
    {"Name": "Converter type", "Description": "Buck (Step-Down)"},
    {"Name": "Switching frequency", "Description": "about 500kHz"}
]
` + "```"

	checklistPrompt = `Review this datasheet and list the things that must be verified once the schematic is drawn.
For an IC, list per pin which components must be connected, and any required pull-up, pull-down, power or GND connections.
Return the list as JSON, as a simple array of strings.
Where (VendorCode) appears, substitute the vendor code found in this datasheet.
Phrase each entry as a verification request, for example:
"Verify that the VIN pin of (VendorCode) is connected to the input supply and a decoupling capacitor (typically 10 uF) to GND".`
)

func withAnalysisContext(analysisText, prompt string) string {
	return "Analysis result:\n" + analysisText + "\n\n" + prompt
}
