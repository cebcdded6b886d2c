package processors

import (
	"context"
	"log"
	"strings"

	"lectureOutline/core"
)

// LocalSummarizer 本地确定性摘要生成器，不依赖网络。质量有限，
// 用于没有 LLM API 或强制离线的场合：标题与摘要从章节文本抽取，
// 重要性按文本量估一个粗略分数。相同输入永远得到相同输出。
type LocalSummarizer struct{}

func (l *LocalSummarizer) Summarize(ctx context.Context, chapters []core.RawChapter) ([]core.Chapter, int) {
	if len(chapters) == 0 {
		return nil, 0
	}

	results := make([]core.Chapter, len(chapters))
	for i, ch := range chapters {
		results[i] = l.summarizeOne(ch)
	}
	log.Printf("本地摘要生成完成: %d 个章节", len(results))
	return results, 0
}

func (l *LocalSummarizer) summarizeOne(ch core.RawChapter) core.Chapter {
	sentences := splitSentences(ch.Text)
	if len(sentences) == 0 {
		return FallbackChapter(ch)
	}

	summary := sentences[0]
	if len(sentences) > 1 {
		summary += " " + sentences[1]
	}

	keyPoints := make([]string, 0, maxKeyPoints)
	for _, s := range sentences {
		if len(keyPoints) == maxKeyPoints {
			break
		}
		keyPoints = append(keyPoints, truncateWords(s, 12))
	}

	return core.Chapter{
		ChapterID:  ch.ChapterID,
		Start:      ch.Start,
		End:        ch.End,
		Title:      truncateWords(sentences[0], 7),
		Summary:    summary,
		Importance: lengthImportance(ch.Text),
		KeyPoints:  keyPoints,
		Text:       ch.Text,
	}
}

// splitSentences 朴素断句，够本地摘要用
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.TrimRight(s, ".!?。！？ ")
	}
	return strings.Join(words[:n], " ")
}

// lengthImportance 文本越长分数越高，300 词封顶
func lengthImportance(text string) float64 {
	words := len(strings.Fields(text))
	score := float64(words) / 300.0
	return clampImportance(score)
}
