package nutrition

import "github.com/nikhilbhutani/caloriediary/internal/prompt"

var analysisPrompt = prompt.MustParse(`
You are a nutrition expert. Parse this food diary entry and calculate the nutritional information.

User said: "{{transcript}}"

Please respond with ONLY a valid JSON object in this exact format:
{
  "foods": [
    {
      "food": "food name",
      "grams": number,
      "calories": number,
      "protein": number,
      "fat": number,
      "carbs": number
    }
  ],
  "totalCalories": number,
  "totalProtein": number,
  "totalFat": number,
  "totalCarbs": number
}

Instructions:
- Convert all quantities to grams (e.g., "1 banana" = 120g, "1 cup rice" = 200g, "1 slice bread" = 30g, "1 egg" = 50g)
- Use standard nutrition values per 100g and calculate for the specified amount
- If no quantity specified, assume reasonable serving sizes
- Calculate totals by summing all foods
- Round calories to whole numbers, round protein/fat/carbs to 1 decimal place
- DO NOT include any text outside the JSON object
- DO NOT use backticks or markdown formatting

Example:
Input: "I ate 150 grams of chicken breast and one banana"
Output: {"foods":[{"food":"chicken breast","grams":150,"calories":248,"protein":46.5,"fat":5.4,"carbs":0},{"food":"banana","grams":120,"calories":107,"protein":1.3,"fat":0.4,"carbs":27.6}],"totalCalories":355,"totalProtein":47.8,"totalFat":5.8,"totalCarbs":27.6}
`)

// BuildPrompt renders the analysis prompt for a transcript.
func BuildPrompt(transcript string) (string, error) {
	return analysisPrompt.Render(map[string]string{"transcript": transcript})
}
