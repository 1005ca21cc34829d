package container

import (
	"log/slog"

	"github.com/blendhq/blend-server/internal/config"
	"github.com/blendhq/blend-server/internal/helpers"
	"github.com/blendhq/blend-server/internal/models"
	"github.com/blendhq/blend-server/internal/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients, nil when running on the mock backend
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client

	TokenValidator helpers.TokenValidator

	AuthService         *services.AuthService
	EventService        *services.EventService
	CalendarService     *services.CalendarService
	RegistrationService *services.RegistrationService
}

// NewContainer creates a new dependency injection container. The backend
// is fixed here for the lifetime of the process: either the in-memory
// mock repo or the Supabase+MongoDB pair, never a mix.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
) *Container {
	var (
		authRepo     models.AuthRepo
		eventRepo    models.EventRepo
		calendarRepo models.CalendarRepo
		regRepo      models.RegistrationRepo
		validator    helpers.TokenValidator
	)

	switch cfg.Backend {
	case config.BackendSupabase:
		supa := models.SupabaseNewRepo(supabaseClient, cfg.SupabaseURL, cfg.SupabaseAnonKey)
		mongoRepo := models.MongodbNewRepo(mongoDBClient)
		authRepo = supa
		eventRepo = mongoRepo
		calendarRepo = mongoRepo
		regRepo = mongoRepo
		validator = &helpers.SupabaseTokenValidator{SupabaseURL: cfg.SupabaseURL}
	default:
		mock := models.MockNewRepo(cfg.DemoAutoSignup, cfg.SessionSecret)
		authRepo = mock
		eventRepo = mock
		calendarRepo = mock
		regRepo = mock
		validator = &helpers.LocalTokenValidator{Secret: []byte(cfg.SessionSecret)}
	}

	authService := services.NewAuthService(authRepo)
	eventService := services.NewEventService(eventRepo)
	calendarService := services.NewCalendarService(calendarRepo, eventRepo)
	registrationService := services.NewRegistrationService(regRepo, eventRepo)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Cloudinary:          cld,
		SupabaseClient:      supabaseClient,
		MongoDBClient:       mongoDBClient,
		TokenValidator:      validator,
		AuthService:         authService,
		EventService:        eventService,
		CalendarService:     calendarService,
		RegistrationService: registrationService,
	}
}
