package processors

import "math"

// CosineSimilarity 计算两个向量的余弦相似度。
// 零向量或维度不一致时返回 0.0，避免 NaN 进入阈值比较。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0.0 || normB == 0.0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// DetectBoundaries 检测话题边界：相邻窗口 (i, i+1) 的嵌入相似度低于
// 阈值时，在索引 i 处记一个边界（边界位于窗口之间，不会落在首尾窗口
// 本身）。少于 2 个窗口时没有边界。返回的索引严格递增，
// 取值范围 [0, len(embeddings)-2]。
func DetectBoundaries(embeddings [][]float32, threshold float64) []int {
	if len(embeddings) < 2 {
		return nil
	}

	var boundaries []int
	for i := 0; i+1 < len(embeddings); i++ {
		similarity := CosineSimilarity(embeddings[i], embeddings[i+1])
		if similarity < threshold {
			boundaries = append(boundaries, i)
		}
	}
	return boundaries
}
