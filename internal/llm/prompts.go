package llm

const suggestTagsPrompt = `You are a recipe tag curator. Assign normalized, reusable tags
for the recipe below (course, cuisine, main ingredient focus, and high-level traits).

Prefer the popular tags listed below, but add new tags when they will likely describe
other recipes too. Normalize each tag by lowercasing it, keeping only letters/spaces,
and preferring general terms (e.g., break "thai vegetable curry" into "thai",
"vegetable", "curry"). Ignore the existing front-matter tags when picking your list.

Popular tags: %s

Recipe:
` + "```\n%s\n```" + `

Return JSON: {"recommended_tags": [...]}.
`

const normalizeIngredientsPrompt = `Analyze the following ingredients and normalize them against the known list and categories.

Existing Ingredients (from aisle.conf):
%s
Existing Categories:
%s
New Ingredients (found in recipe, not in aisle.conf):
%s
Task:
1. Identify synonyms: If a New Ingredient is a variation of an Existing Ingredient (e.g., "Garlic Cloves" -> "Garlic"), map it.
2. Identify new items: If it has no match, list it as a new item and assign it to an appropriate Category (use existing ones or suggest a standard new one like produce, dairy, pantry, spices, meat, frozen, bakery).

Return JSON: {"synonyms": {"new ingredient": "existing ingredient"}, "new_items": [{"name": "...", "category": "..."}]}.
`
