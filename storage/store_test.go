package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectureOutline/core"
)

func TestFormatSRTTimestamp(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.25, "00:01:01,250"},
		{3661.5, "01:01:01,500"},
		{-5, "00:00:00,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatSRTTimestamp(tt.seconds), "%.3f seconds", tt.seconds)
	}
}

func TestWriteSRT(t *testing.T) {
	segments := []core.Segment{
		{ID: 0, Start: 0, End: 2.5, Text: "Welcome to the lecture."},
		{ID: 1, Start: 2.5, End: 6, Text: "Today we cover gradient descent."},
	}

	path := filepath.Join(t.TempDir(), "lecture.srt")
	require.NoError(t, WriteSRT(path, segments))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"Welcome to the lecture.\n\n" +
		"2\n" +
		"00:00:02,500 --> 00:00:06,000\n" +
		"Today we cover gradient descent.\n\n"
	assert.Equal(t, expected, string(data))
}

func TestSaveJSONAtomicRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapters_raw.json")

	chapters := []core.RawChapter{
		{ChapterID: 0, Start: 0, End: 90, Text: "first"},
		{ChapterID: 1, Start: 90, End: 300, Text: "second"},
	}
	require.NoError(t, SaveJSON(path, chapters))

	// 没有残留的临时文件
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chapters_raw.json", entries[0].Name())

	var loaded []core.RawChapter
	require.NoError(t, LoadJSON(path, &loaded))
	assert.Equal(t, chapters, loaded)
}

func TestLoadJSONCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapters.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"chapter_id": 0, "start":`), 0644))

	var out []core.Chapter
	err := LoadJSON(path, &out)
	require.Error(t, err)
	var integrityErr *core.DataIntegrityError
	assert.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, path, integrityErr.Path)
}

func TestLectureID(t *testing.T) {
	id := LectureID("/videos/Linear Algebra 01.mp4")
	assert.Equal(t, id, LectureID("/videos/Linear Algebra 01.mp4"), "stable for identical paths")
	assert.NotEqual(t, id, LectureID("/other/Linear Algebra 01.mp4"), "path-sensitive")

	assert.Regexp(t, `^linear_algebra_01_[0-9a-f]{8}$`, id)
}

func TestLectureDirCreates(t *testing.T) {
	store := NewStore(t.TempDir())
	dir, err := store.LectureDir("lecture_abc12345")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
