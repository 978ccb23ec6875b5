package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"eventbot/internal/adapters/discord"
	"eventbot/internal/application"
	"eventbot/internal/config"
	"eventbot/internal/infrastructure/database"
	"eventbot/internal/infrastructure/database/sqlc_generated"
	"eventbot/internal/infrastructure/i18n"
	"eventbot/internal/infrastructure/memory"
	"eventbot/internal/infrastructure/metrics"
	"eventbot/internal/infrastructure/redis"
	"eventbot/internal/ports/output"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration invalide: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := openRepository(ctx, cfg)
	defer closeRepo()

	ledger, closeLedger := openLedger(ctx, cfg)
	defer closeLedger()

	tr, err := i18n.NewTranslator(cfg.Locale)
	if err != nil {
		log.Fatalf("❌ Chargement des traductions: %v", err)
	}
	locale := tr.DefaultLocale()
	if locale != cfg.Locale {
		log.Printf("⚠️ Langue %q non reconnue, utilisation de %q", cfg.Locale, locale)
	}
	recorder := metrics.NewRecorder()

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.Fatalf("❌ Erreur lors de la création de la session Discord: %v", err)
	}

	gateway := discord.NewGateway(session, cfg.GuildID, tr, locale)
	events := application.NewLifecycleService(repo, gateway, application.WithMetrics(recorder))
	scheduler := application.NewScheduler(events, ledger, recorder, cfg.TickInterval)
	handler := discord.NewHandler(events, tr, locale, cfg.CommandPrefix, discord.AdminLookup(session))
	bot := discord.NewBot(session, cfg.GuildID, handler)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Start(ctx)
	})
	g.Go(func() error {
		scheduler.Run(ctx)
		return nil
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return recorder.Serve(ctx, cfg.MetricsAddr)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ Arrêt sur erreur: %v", err)
	}
	log.Println("👋 Arrêt terminé.")
}

func openRepository(ctx context.Context, cfg *config.Config) (output.EventRepository, func()) {
	if cfg.UsesMemoryStore() {
		log.Println("⚠️ Stockage en mémoire: les événements seront perdus à l'arrêt.")
		return memory.NewEventRepository(), func() {}
	}

	if _, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatalf("❌ Erreur lors des migrations: %v", err)
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Erreur lors de l'initialisation de la base de données: %v", err)
	}
	return database.NewEventRepository(sqlc_generated.New(pool)), pool.Close
}

func openLedger(ctx context.Context, cfg *config.Config) (output.ReminderLedger, func()) {
	if cfg.RedisURL == "" {
		return memory.NewReminderLedger(), func() {}
	}
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Connexion à Redis: %v", err)
	}
	return redis.NewReminderLedger(client), func() { _ = client.Close() }
}
