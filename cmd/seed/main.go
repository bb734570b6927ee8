package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"quillhouse/internal/auth"
	"quillhouse/internal/config"
	wsSvc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/repository/postgres"
	pgWorkspace "quillhouse/internal/repository/postgres/workspace"
	"quillhouse/internal/richtext"
	authSvc "quillhouse/internal/service/auth"
	wsService "quillhouse/internal/service/workspace"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Demo users. IDs are fixed so issued dev tokens stay valid across reseeds.
var (
	demoOwner = demoUser{ID: "4a1f0c2e-7b3d-4e5f-8a9b-0c1d2e3f4a5b", Email: "aria@example.com", Name: "Aria"}
	demoGuest = demoUser{ID: "9e8d7c6b-5a4f-4321-8fed-cba987654321", Email: "theo@example.com", Name: "Theo"}
)

type demoUser struct {
	ID    string
	Email string
	Name  string
}

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	clearData := flag.Bool("clear-data", false, "Delete the demo users' projects (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	switch {
	case *clearData:
		log.Printf("🧹 Clearing demo data (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropAll(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	log.Println("🧹 Clearing existing demo projects...")
	if err := clearDemoData(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	projectRepo := pgWorkspace.NewProjectRepository(repoConfig)
	folderRepo := pgWorkspace.NewFolderRepository(repoConfig)
	fileRepo := pgWorkspace.NewFileRepository(repoConfig)
	messageRepo := pgWorkspace.NewMessageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	authorizer := authSvc.NewCollaboratorAuthorizer(projectRepo, folderRepo, fileRepo)
	analyzer := richtext.NewAnalyzer()
	s := seeder{
		projects: wsService.NewProjectService(projectRepo, folderRepo, txManager, authorizer, analyzer, logger),
		folders:  wsService.NewFolderService(folderRepo, authorizer, logger),
		files:    wsService.NewFileService(fileRepo, authorizer, analyzer, logger),
		chat:     wsService.NewChatService(messageRepo, authorizer, cfg.ChatHistoryLimit, logger),
	}

	projectID, err := s.seed(ctx)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("✅ Created demo project %s", projectID)

	if cfg.JWTSecret != "" {
		for _, u := range []demoUser{demoOwner, demoGuest} {
			token, err := auth.IssueToken(cfg.JWTSecret, u.ID, u.Email, u.Name, 30*24*time.Hour)
			if err != nil {
				log.Fatalf("Failed to issue token: %v", err)
			}
			log.Printf("🔑 %s (%s): QUILL_USER_ID=%s QUILL_TOKEN=%s", u.Name, u.Email, u.ID, token)
		}
	}

	log.Println("🎉 Seeding complete!")
}

type seeder struct {
	projects wsSvc.ProjectService
	folders  wsSvc.FolderService
	files    wsSvc.FileService
	chat     wsSvc.ChatService
}

// seed builds one shared project: an owner draft, a shared-base folder, a personal
// folder for the collaborator, and a short chat history.
func (s seeder) seed(ctx context.Context) (string, error) {
	project, err := s.projects.CreateProject(ctx, &wsSvc.CreateProjectRequest{
		UserID:      demoOwner.ID,
		Title:       "The Academy of Arcane Arts",
		Description: "Aria receives an invitation she is sure was meant for someone else.",
		Genres:      []string{"Fantasy", "Coming of age"},
	})
	if err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}

	if _, err := s.projects.AddCollaborator(ctx, demoOwner.ID, project.ID, demoGuest.ID); err != nil {
		return "", fmt.Errorf("add collaborator: %w", err)
	}

	draft := richtext.FromPlainText(
		"The morning sun cast long shadows across the cobblestone streets of Eldergrove.\n\n" +
			"Aria stood at the window of her small apartment, watching the city wake. Today was the day everything would change.")
	if _, err := s.projects.SaveDraft(ctx, demoOwner.ID, project.ID, &wsSvc.SaveContentRequest{
		Content:  draft,
		Revision: time.Now().UnixNano(),
	}); err != nil {
		return "", fmt.Errorf("save draft: %w", err)
	}

	shared, err := s.folders.CreateFolder(ctx, &wsSvc.CreateFolderRequest{
		ProjectID:  project.ID,
		UserID:     demoOwner.ID,
		Label:      "World Bible",
		SharedBase: true,
	})
	if err != nil {
		return "", fmt.Errorf("create shared folder: %w", err)
	}
	if err := s.createFile(ctx, demoOwner.ID, shared.ID, "Eldergrove", "A river city of bridges and bell towers."); err != nil {
		return "", err
	}

	personal, err := s.folders.CreateFolder(ctx, &wsSvc.CreateFolderRequest{
		ProjectID: project.ID,
		UserID:    demoGuest.ID,
		Label:     "Theo's Notes",
	})
	if err != nil {
		return "", fmt.Errorf("create personal folder: %w", err)
	}
	if err := s.createFile(ctx, demoGuest.ID, personal.ID, "Chapter 2 ideas", "What if the letter was forged?"); err != nil {
		return "", err
	}

	for _, m := range []struct {
		user demoUser
		text string
	}{
		{demoOwner, "Draft of chapter one is up."},
		{demoGuest, "Reading it now. Left some notes in my folder."},
	} {
		if _, err := s.chat.SendMessage(ctx, &wsSvc.SendMessageRequest{
			ProjectID:  project.ID,
			SenderID:   m.user.ID,
			SenderName: m.user.Name,
			Text:       m.text,
		}); err != nil {
			return "", fmt.Errorf("send message: %w", err)
		}
	}

	return project.ID, nil
}

func (s seeder) createFile(ctx context.Context, userID, folderID, label, text string) error {
	file, err := s.files.CreateFile(ctx, &wsSvc.CreateFileRequest{FolderID: folderID, UserID: userID, Label: label})
	if err != nil {
		return fmt.Errorf("create file %q: %w", label, err)
	}
	_, err = s.files.SaveContent(ctx, userID, file.ID, &wsSvc.SaveContentRequest{
		Content:  richtext.FromPlainText(text),
		Revision: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("save file %q: %w", label, err)
	}
	log.Printf("✅ Created file %q in folder %s", label, folderID)
	return nil
}

// clearDemoData deletes projects owned by the demo users; folders, files and messages cascade
func clearDemoData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	_, err := pool.Exec(ctx,
		"DELETE FROM "+tables.Projects+" WHERE owner_id = ANY($1)",
		[]string{demoOwner.ID, demoGuest.ID},
	)
	return err
}
