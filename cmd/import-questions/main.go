package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/mathquiz-api/internal/config"
	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/importer"
	pgRepo "github.com/yourusername/mathquiz-api/internal/repository/postgres"
	"github.com/yourusername/mathquiz-api/pkg/database"
)

// Загрузка банка вопросов из CSV или XLSX.
// Пример: go run ./cmd/import-questions -file questions.xlsx -sheet Sorular
func main() {
	file := flag.String("file", "", "путь к CSV или XLSX файлу")
	sheet := flag.String("sheet", "", "лист Excel (по умолчанию первый)")
	dryRun := flag.Bool("dry-run", false, "только проверить файл, не записывая в БД")
	flag.Parse()

	if *file == "" {
		log.Fatal("Укажите файл: -file questions.csv")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Не удалось открыть файл: %v", err)
	}
	defer f.Close()

	questions, rowErrors, err := parse(f, *file, *sheet)
	if err != nil {
		log.Fatalf("Ошибка разбора файла: %v", err)
	}
	for _, rowErr := range rowErrors {
		log.Printf("[import] Пропущена %v", rowErr)
	}
	log.Printf("[import] Корректных вопросов: %d, пропущено строк: %d", len(questions), len(rowErrors))

	if *dryRun || len(questions) == 0 {
		return
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	dbCfg, err := config.LoadDatabase(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(dbCfg.PostgresConnectionString(), false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo := pgRepo.NewQuestionRepo(db)
	inserted, err := repo.CreateBatch(ctx, questions)
	if err != nil {
		log.Fatalf("Ошибка записи вопросов: %v", err)
	}
	log.Printf("[import] Добавлено вопросов: %d", inserted)

	counts, err := repo.CountByGrade(ctx)
	if err != nil {
		log.Printf("[import] Не удалось получить статистику: %v", err)
		return
	}
	for grade := entity.MinGrade; grade <= entity.MaxGrade; grade++ {
		log.Printf("[import] %d. sınıf: %d soru", grade, counts[grade])
	}
}

func parse(r io.Reader, path, sheet string) ([]entity.Question, []importer.RowError, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importer.ParseXLSX(r, sheet)
	}
	return importer.ParseCSV(r)
}
