package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/user-lifecycle/internal/config"
	"github.com/spec-kit/user-lifecycle/internal/observability"
	"github.com/spec-kit/user-lifecycle/internal/persistence"
	"github.com/spec-kit/user-lifecycle/internal/repository"
	"github.com/spec-kit/user-lifecycle/internal/service"
)

// Console variant of the user service: the same service layer driven by a
// menu instead of HTTP. No event publishing is wired here.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	userService := service.NewUserService(service.UserDependencies{
		UserRepo: repository.NewUserRepository(pg.PoolHandle()),
	}, logger)

	runMenu(ctx, userService)
}

func runMenu(ctx context.Context, users *service.UserService) {
	in := bufio.NewScanner(os.Stdin)

	fmt.Println("=== User Service ===")
	fmt.Println("1 - создать пользователя")
	fmt.Println("2 - найти пользователя по ID")
	fmt.Println("3 - показать всех пользователей")
	fmt.Println("4 - обновить пользователя")
	fmt.Println("5 - удалить пользователя")
	fmt.Println("6 - выход")

	for {
		fmt.Print("\nВыберите операцию (1-6): ")
		if !in.Scan() {
			return
		}

		var err error
		switch strings.TrimSpace(in.Text()) {
		case "1":
			err = createUser(ctx, in, users)
		case "2":
			err = readUser(ctx, in, users)
		case "3":
			err = readAllUsers(ctx, users)
		case "4":
			err = updateUser(ctx, in, users)
		case "5":
			err = deleteUser(ctx, in, users)
		case "6":
			fmt.Println("Выход из приложения...")
			return
		default:
			fmt.Println("Неверный выбор. Пожалуйста, выберите от 1 до 6.")
			continue
		}

		if err != nil {
			fmt.Printf("Ошибка: %v\n", err)
		}
	}
}

func createUser(ctx context.Context, in *bufio.Scanner, users *service.UserService) error {
	name := prompt(in, "Имя: ")
	email := prompt(in, "Email: ")
	age, err := strconv.Atoi(prompt(in, "Возраст: "))
	if err != nil {
		return fmt.Errorf("возраст должен быть числом")
	}

	user, err := users.CreateUser(ctx, name, email, &age)
	if err != nil {
		return err
	}
	fmt.Printf("Пользователь создан с ID %d\n", user.ID)
	return nil
}

func readUser(ctx context.Context, in *bufio.Scanner, users *service.UserService) error {
	id, err := promptID(in)
	if err != nil {
		return err
	}

	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("ID: %d, Имя: %s, Email: %s, Возраст: %d, Создан: %s\n",
		user.ID, user.Name, user.Email, user.Age, user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func readAllUsers(ctx context.Context, users *service.UserService) error {
	list, err := users.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("Пользователи не найдены")
		return nil
	}
	for _, user := range list {
		fmt.Printf("ID: %d, Имя: %s, Email: %s, Возраст: %d\n", user.ID, user.Name, user.Email, user.Age)
	}
	return nil
}

func updateUser(ctx context.Context, in *bufio.Scanner, users *service.UserService) error {
	id, err := promptID(in)
	if err != nil {
		return err
	}

	input := service.UserUpdateInput{}
	if name := prompt(in, "Новое имя (пусто — без изменений): "); name != "" {
		input.Name = &name
	}
	if email := prompt(in, "Новый email (пусто — без изменений): "); email != "" {
		input.Email = &email
	}
	if ageStr := prompt(in, "Новый возраст (пусто — без изменений): "); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			return fmt.Errorf("возраст должен быть числом")
		}
		input.Age = &age
	}

	if _, err := users.UpdateUser(ctx, id, input); err != nil {
		return err
	}
	fmt.Println("Пользователь обновлён")
	return nil
}

func deleteUser(ctx context.Context, in *bufio.Scanner, users *service.UserService) error {
	id, err := promptID(in)
	if err != nil {
		return err
	}

	if err := users.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Println("Пользователь удалён")
	return nil
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func promptID(in *bufio.Scanner) (int64, error) {
	id, err := strconv.ParseInt(prompt(in, "ID пользователя: "), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ID должен быть числом")
	}
	return id, nil
}
