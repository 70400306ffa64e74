package prompt

// Fragment names under the "fragment" variable.
const (
	FragmentIntro               = "intro"
	FragmentStyleInfo           = "styleInfo"
	FragmentPromptCustomization = "promptCustomization"
	FragmentTranslationMemory   = "translationMemory"
	FragmentRelatedKeys         = "relatedKeys"
	FragmentICUInfo             = "icuInfo"
	FragmentKeyInfo             = "keyInfo"
	FragmentScreenshots         = "screenshots"
	FragmentTranslationInfo     = "translationInfo"
	FragmentTranslateJSON       = "translateJson"
)

// JSONMarker asks the adapter for a JSON response. It contains "json", which
// is what the vendor adapters look for.
const JSONMarker = "[[output_valid_json]]"

const fragmentIntro = `You are a translator in software localization platform, that strictly follows instructions.
Each translation has a translation key, which usually reflects the structure of the app, so similar keys are usually related.`

const fragmentStyleInfo = `Don't add any extra dots, spaces or additional marks.
Keep original line breaks in the text.
Keep the style of source text.
All translations are part of software product, don't transform them into sentences.`

const fragmentPromptCustomization = "{{#with project.description}}\n" +
	"Here is user defined description for the project:\n" +
	"```\n{{this}}\n```\n" +
	"{{/with}}\n" +
	"{{#with target.languageNote}}\n" +
	"Here is user defined note:\n" +
	"```\n{{this}}\n```\n" +
	"{{/with}}"

const fragmentTranslationMemory = `{{#with translationMemory.json}}
These are some results from translation memory from the same project. You may use this as a inspiration:

{{this}}
{{/with}}`

const fragmentRelatedKeys = `{{#with relatedKeys.json}}
Here is list of translations used in the same context:

{{this}}
{{/with}}`

const fragmentICUInfo = "If message includes ICU parameters in curly braces, don't modify the parameter names.\n" +
	"{{#with target.pluralFormExamples}}\n" +
	"Translate ICU message plural forms, these are examples of source strings with placeholder replaced with example number\n" +
	"for {{ target.language }}:\n" +
	"{{this}}\n\n" +
	"Please include exactly these forms in the response exactly in this order: {{target.exactForms}}. So it will look like this:\n" +
	"```\n{{target.exampleIcuPlural}}\n```\n" +
	"Always replace number with # in the plural.\n" +
	"{{/with}}\n\n" +
	"Translation can contain also different i18n placeholder formats.\n" +
	"If you spot some kind, don't translate them and keep them in the original format."

const fragmentKeyInfo = "You are working with translation key \"{{ key.name }}\" (no need to mention it in response).\n" +
	"{{#with key.description}}\n" +
	"User provided additional description of the key:\n" +
	"```\n{{this}}\n```\n" +
	"{{/with}}"

const fragmentScreenshots = "{{screenshots.first}}"

const fragmentTranslationInfo = "Translate ```{{source.translation}}``` from {{source.language}} to {{target.language}}."

const fragmentTranslateJSON = "Return result in following structure:\n" +
	"```\n" +
	"{\n" +
	"   \"output\": <translation>,\n" +
	"   \"contextDescription\": <description>\n" +
	"}\n" +
	JSONMarker + "\n" +
	"```"

// FragmentGroup returns the "fragment" group every variable tree carries.
func FragmentGroup() *Variable {
	return Group(fragmentGroup, fragments()...)
}

// fragments returns fresh fragment variables holding unrendered templates.
func fragments() []*Variable {
	return []*Variable{
		NewVariable(FragmentIntro, fragmentIntro),
		NewVariable(FragmentStyleInfo, fragmentStyleInfo),
		NewVariable(FragmentPromptCustomization, fragmentPromptCustomization),
		NewVariable(FragmentTranslationMemory, fragmentTranslationMemory),
		NewVariable(FragmentRelatedKeys, fragmentRelatedKeys),
		NewVariable(FragmentICUInfo, fragmentICUInfo),
		NewVariable(FragmentKeyInfo, fragmentKeyInfo),
		NewVariable(FragmentScreenshots, fragmentScreenshots),
		NewVariable(FragmentTranslationInfo, fragmentTranslationInfo),
		NewVariable(FragmentTranslateJSON, fragmentTranslateJSON),
	}
}

// DefaultTemplate composes every fragment in the recommended order.
const DefaultTemplate = `{{! Prompt is split into multiple fragments }}
{{! Every fragment is a variable you can inspect }}
{{fragment.intro}}

{{fragment.styleInfo}}

{{fragment.promptCustomization}}

{{fragment.icuInfo}}

{{fragment.relatedKeys}}

{{fragment.translationMemory}}

{{fragment.keyInfo}}

{{fragment.translationInfo}}

{{fragment.translateJson}}`

// Default prompt identity.
const (
	DefaultPromptName   = "default"
	DefaultProviderName = "default"
)
