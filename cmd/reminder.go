package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	"github.com/tesoreria-cl/tesoreria/internal/obs"
	"github.com/tesoreria-cl/tesoreria/internal/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/reminder"
	reminderPostgres "github.com/tesoreria-cl/tesoreria/internal/reminder/postgres"
	"github.com/tesoreria-cl/tesoreria/pkg/logger"
)

var remindLoop bool

// remindCmd runs the pending-request reminder sweep, either once or on the
// configured interval. Useful when the sweep runs as its own process instead
// of inside the API server.
var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the pending payment request reminder sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(os.Getenv("APP_ENV"))
		lg := logger.LoggerWrapper()

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize orm: %w", err)
		}

		obs.Init()
		bus := events.NewEventBus(lg)
		paymentrequest.NewEventHandler(lg).RegisterEventHandlers(bus)
		svc := reminder.NewService(
			reminderPostgres.NewReminderRepository(gormDB), bus,
			cfg.Reminder.GetAgingThreshold(), lg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if remindLoop {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				cancel()
			}()

			interval := cfg.Reminder.Interval
			if interval <= 0 {
				interval = internal.DefaultReminderRunSpan
			}
			svc.Run(ctx, interval)
			return nil
		}

		result, err := svc.Sweep(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("scanned=%d reminders_created=%d failures=%d\n",
			result.Scanned, result.RemindersCreated, result.Failures)
		return nil
	},
}

func init() {
	remindCmd.Flags().BoolVar(&remindLoop, "loop", false, "Keep sweeping on the configured interval")
}
