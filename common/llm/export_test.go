package llm

var ExtractJSONObject = extractJSONObject
