package processors

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"lectureOutline/config"
)

// EmbeddingProvider 文本向量化服务。对相同文本返回相同向量，
// 失败对当前讲座是致命的（没有嵌入就无法检测话题边界）。
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder 基于 OpenAI 兼容 API 的向量化实现
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

func NewOpenAIEmbedder(cfg *config.Config) *OpenAIEmbedder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.EmbeddingModel,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// API 拒绝空字符串；空窗口（长静默）不送出去，占位零向量，
	// 余弦相似度对零向量定义为 0，阈值比较仍然成立
	nonEmpty := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) != "" {
			nonEmpty = append(nonEmpty, text)
			positions = append(positions, i)
		}
	}

	embeddings := make([][]float32, len(texts))
	if len(nonEmpty) > 0 {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(e.model),
			Input: nonEmpty,
		})
		if err != nil {
			return nil, fmt.Errorf("create embeddings: %w", err)
		}
		if len(resp.Data) != len(nonEmpty) {
			return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(nonEmpty))
		}

		// 按 Index 归位，不信任返回顺序
		for _, item := range resp.Data {
			if item.Index < 0 || item.Index >= len(positions) {
				return nil, fmt.Errorf("embedding response index %d out of range", item.Index)
			}
			embeddings[positions[item.Index]] = item.Embedding
		}
	}

	dim := 0
	for _, emb := range embeddings {
		if emb != nil {
			dim = len(emb)
			break
		}
	}
	for i, emb := range embeddings {
		if emb == nil {
			embeddings[i] = make([]float32, dim)
		}
	}
	return embeddings, nil
}

// HashEmbedder 确定性的词袋哈希向量化，无需网络。
// 质量远不如真正的嵌入模型，只用于测试与离线运行。
type HashEmbedder struct {
	Dim int
}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{Dim: 256}
}

func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	dim := h.Dim
	if dim <= 0 {
		dim = 256
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		for _, token := range tokenize(text) {
			hasher := fnv.New32a()
			hasher.Write([]byte(token))
			vec[hasher.Sum32()%uint32(dim)]++
		}
		normalize(vec)
		embeddings[i] = vec
	}
	return embeddings, nil
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
