package llm

import "fmt"

// systemPrompt pins the model into analyst mode and JSON-only output
const systemPrompt = "Sen bir müşteri hizmetleri analiz uzmanısın. Sadece JSON yanıt ver."

// analysisPromptTemplate embeds the transcript into the fixed analysis
// instruction. The model is asked for the canonical lowercase vocabulary;
// legacy Turkish values are still accepted downstream by the vocabulary
// tables in entities.
const analysisPromptTemplate = `Aşağıdaki müşteri hizmetleri konuşmasını detaylı bir şekilde analiz et ve SADECE JSON formatında yanıt ver.

Konuşma:
%s

Analiz kriterleri:
1. sentiment: Müşterinin genel duygu durumu (1-10 arası sayı)
2. resolution: Problemin çözüm kalitesi (1-10 arası sayı)
3. agentPerformance: Temsilcinin performansı (1-10 arası sayı)
4. insights: İçgörüler dizisi (array) - En az 2, en fazla 5 içgörü
5. metrics: Ek metrikler nesnesi

JSON formatı (başka hiçbir şey yazma):
{
  "sentiment": sayı,
  "resolution": sayı,
  "agentPerformance": sayı,
  "insights": [{"type": "success/warning/info", "text": "açıklama"}],
  "metrics": {
    "responseTime": "fast/medium/slow",
    "empathyLevel": "high/medium/low",
    "problemResolved": boolean,
    "customerEmotion": "positive/neutral/negative"
  }
}`

// AnalysisPrompt renders the instruction template around a transcript
func AnalysisPrompt(conversationText string) string {
	return fmt.Sprintf(analysisPromptTemplate, conversationText)
}
