package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/mathquiz-api/internal/config"
)

// Ручное управление миграциями: up, down, force (снятие dirty-состояния) и version.
func main() {
	command := flag.String("cmd", "up", "up | down | force | version")
	steps := flag.Int("steps", 0, "количество шагов для up/down (0 = все для up, 1 для down)")
	version := flag.Int("version", -1, "версия для force")
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	dbCfg, err := config.LoadDatabase(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", dbCfg.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance(dbCfg.MigrationsPath, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	switch *command {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		n := *steps
		if n <= 0 {
			n = 1
		}
		err = m.Steps(-n)
	case "force":
		if *version < 0 {
			log.Fatal("Для force нужен -version")
		}
		fmt.Printf("Принудительная установка версии %d...\n", *version)
		err = m.Force(*version)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("Миграции еще не применялись")
			return
		}
		if verr != nil {
			log.Fatal(verr)
		}
		fmt.Printf("Версия: %d, dirty: %t\n", v, dirty)
		return
	default:
		log.Fatalf("Неизвестная команда %q", *command)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("Изменений нет, база данных актуальна.")
		return
	}
	if err != nil {
		log.Fatalf("Ошибка выполнения %s: %v", *command, err)
	}
	fmt.Println("Готово.")
}
