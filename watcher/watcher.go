package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler 处理一个新到的讲座视频文件
type Handler func(ctx context.Context, videoPath string) error

// Watcher 监听投递目录，新出现的视频文件逐个送入流水线。
// 讲座之间没有共享状态，可以并发处理，单个讲座失败不影响其它讲座。
type Watcher struct {
	inputDir      string
	handler       Handler
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".flv":  true,
}

func New(inputDir string, maxConcurrent int, handler Handler) *Watcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Watcher{
		inputDir:      inputDir,
		handler:       handler,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
	}
}

// Start 阻塞运行直到 ctx 取消；退出前等待在途的讲座处理完
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.inputDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.inputDir, err)
	}
	log.Printf("监听目录 %s (最大并发 %d)", w.inputDir, w.maxConcurrent)

	for {
		select {
		case <-ctx.Done():
			log.Printf("等待在途讲座处理完成...")
			w.wg.Wait()
			log.Printf("目录监听已停止")
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isVideoFile(event.Name) {
				continue
			}
			log.Printf("发现新视频: %s", event.Name)

			// 等文件写完再动手
			time.Sleep(500 * time.Millisecond)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						log.Printf("讲座处理失败 %s: %v", path, err)
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Printf("目录监听错误: %v", err)
		}
	}
}

func isVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}
