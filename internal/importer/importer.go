// Package importer читает банк вопросов из CSV и Excel.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// Обязательные колонки файла
var requiredColumns = []string{"grade", "topic", "question_text", "option_a", "option_b", "option_c", "option_d", "correct_answer"}

const difficultyColumn = "difficulty_level"

// RowError описывает отклоненную строку файла (нумерация с 1, включая заголовок)
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// ParseCSV читает вопросы из CSV. BOM в начале файла допускается.
func ParseCSV(r io.Reader) ([]entity.Question, []RowError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseRecords(records)
}

// ParseXLSX читает вопросы из листа Excel; пустое имя листа означает первый лист
func ParseXLSX(r io.Reader, sheet string) ([]entity.Question, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("xlsx has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return ParseRecords(rows)
}

// ParseRecords превращает строки таблицы в вопросы. Первая строка — заголовок,
// порядок колонок произвольный. Ошибочные строки пропускаются и возвращаются отдельно.
func ParseRecords(records [][]string) ([]entity.Question, []RowError, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	var (
		questions []entity.Question
		rowErrors []RowError
	)
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		q, err := parseRow(record, columns)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: i + 2, Err: err})
			continue
		}
		questions = append(questions, q)
	}
	return questions, rowErrors, nil
}

func parseRow(record []string, columns map[string]int) (entity.Question, error) {
	get := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	grade, err := strconv.Atoi(get("grade"))
	if err != nil || !entity.ValidGrade(grade) {
		return entity.Question{}, fmt.Errorf("invalid grade %q", get("grade"))
	}

	q := entity.Question{
		Grade:         grade,
		Topic:         get("topic"),
		QuestionText:  get("question_text"),
		OptionA:       get("option_a"),
		OptionB:       get("option_b"),
		OptionC:       get("option_c"),
		OptionD:       get("option_d"),
		CorrectAnswer: strings.ToUpper(get("correct_answer")),
		Difficulty:    strings.ToLower(get(difficultyColumn)),
	}
	if q.Difficulty == "" {
		q.Difficulty = entity.DifficultyMedium
	}

	switch {
	case q.Topic == "":
		return entity.Question{}, fmt.Errorf("topic is empty")
	case q.QuestionText == "":
		return entity.Question{}, fmt.Errorf("question_text is empty")
	case q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "":
		return entity.Question{}, fmt.Errorf("all four options are required")
	case q.CorrectIndex() < 0:
		return entity.Question{}, fmt.Errorf("correct_answer must be A, B, C or D, got %q", q.CorrectAnswer)
	case !entity.ValidDifficulty(q.Difficulty):
		return entity.Question{}, fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	return q, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
