package routes

import (
	"net/http"

	"github.com/campuslabs/equiptrack-backend/api/controllers"
	"github.com/campuslabs/equiptrack-backend/api/middleware"
	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/internal/auth"
	"github.com/campuslabs/equiptrack-backend/internal/equipment"
	"github.com/campuslabs/equiptrack-backend/internal/maintenance"
	"github.com/campuslabs/equiptrack-backend/internal/reservations"
	"github.com/campuslabs/equiptrack-backend/internal/statistics"
	"github.com/campuslabs/equiptrack-backend/internal/usage"
	"github.com/campuslabs/equiptrack-backend/internal/users"
	"github.com/campuslabs/equiptrack-backend/pkg/auth/session"
	"github.com/campuslabs/equiptrack-backend/pkg/config"
	pkgdb "github.com/campuslabs/equiptrack-backend/pkg/db"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
	"github.com/campuslabs/equiptrack-backend/pkg/metrics"
	pkgredis "github.com/campuslabs/equiptrack-backend/pkg/redis"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Params bundles everything the router mounts.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *pkgdb.Client
	Redis       *pkgredis.Client
	Sessions    session.AccessSessionChecker
	Metrics     *metrics.HTTPMetrics
	Auth        auth.Service
	Users       users.Service
	Equipment   equipment.Service
	Usage       usage.Service
	Reservation reservations.Service
	Maintenance maintenance.Service
	Statistics  statistics.Service
	Audit       audit.Service
}

// New assembles the full HTTP route tree.
func New(p Params) http.Handler {
	logg := p.Logger
	jwtCfg := p.Config.JWT

	requireAuth := middleware.Auth(jwtCfg, p.Sessions, logg)
	adminOnly := middleware.RequireRole(logg, enums.RoleAdmin.String())
	managers := middleware.RequireRole(logg, enums.RoleAdmin.String(), enums.RoleTeacher.String())

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.CORS(p.Config.CORS))
	r.Use(middleware.Metrics(p.Metrics))
	r.Use(middleware.Logging(logg))

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(p.DB, p.Redis, logg))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.Login(p.Auth, jwtCfg, logg))
			r.Post("/register", controllers.Register(p.Auth, logg))
			r.Post("/check-username", controllers.CheckUsername(p.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", controllers.Logout(p.Auth, jwtCfg, logg))
				r.Get("/me", controllers.Me(p.Auth, logg))
				r.Put("/change-password", controllers.ChangePassword(p.Auth, logg))
			})
		})

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", controllers.ListEquipment(p.Equipment, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/{id}", controllers.GetEquipment(p.Equipment, logg))
				r.Get("/{id}/statistics", controllers.EquipmentStatistics(p.Equipment, logg))
				r.Post("/{id}/usage", controllers.StartUsage(p.Usage, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, managers)
				r.Post("/", controllers.CreateEquipment(p.Equipment, logg))
				r.Put("/{id}", controllers.UpdateEquipment(p.Equipment, logg))
				r.Post("/{id}/archive", controllers.ArchiveEquipment(p.Equipment, logg))
				r.Post("/{id}/activate", controllers.ActivateEquipment(p.Equipment, logg))
				r.Get("/export/csv", controllers.ExportEquipmentCSV(p.Equipment, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, adminOnly)
				r.Delete("/{id}", controllers.DeleteEquipment(p.Equipment, logg))
			})
		})

		r.Route("/usage", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/{id}/finish", controllers.FinishUsage(p.Usage, logg))
		})

		r.Route("/reservation", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.ListReservations(p.Reservation, logg))
			r.Post("/", controllers.CreateReservation(p.Reservation, logg))
			r.Get("/available-slots/{equipmentId}", controllers.AvailableSlots(p.Reservation, logg))
			r.Put("/{id}/cancel", controllers.CancelReservation(p.Reservation, logg))

			r.Group(func(r chi.Router) {
				r.Use(managers)
				r.Put("/{id}/approve", controllers.ReviewReservation(p.Reservation, logg))
				r.Put("/{id}/complete", controllers.CompleteReservation(p.Reservation, logg))
			})
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/stats", controllers.MaintenanceStats(p.Maintenance, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", controllers.ListMaintenance(p.Maintenance, logg))
				r.Post("/", controllers.CreateMaintenance(p.Maintenance, logg))
				r.Get("/{id}", controllers.GetMaintenance(p.Maintenance, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, managers)
				r.Put("/{id}", controllers.UpdateMaintenance(p.Maintenance, logg))
				r.Put("/{id}/assign", controllers.AssignMaintenance(p.Maintenance, logg))
				r.Put("/{id}/complete", controllers.CompleteMaintenance(p.Maintenance, logg))
			})
		})

		r.Route("/statistics", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/overview", controllers.StatisticsOverview(p.Statistics, logg))
			r.Get("/equipment-details", controllers.StatisticsEquipmentDetails(p.Statistics, logg))
			r.Get("/departments", controllers.StatisticsDepartments(p.Statistics, logg))
			r.Get("/equipment", controllers.StatisticsEquipment(p.Statistics, logg))
			r.Get("/reservations", controllers.StatisticsReservations(p.Statistics, logg))
			r.Get("/maintenance", controllers.StatisticsMaintenance(p.Statistics, logg))
			r.Get("/utilization", controllers.StatisticsUtilization(p.Statistics, logg))
			r.Get("/trends", controllers.StatisticsTrends(p.Statistics, logg))
			r.Get("/popular-equipment", controllers.StatisticsPopularEquipment(p.Statistics, logg))
			r.Get("/user-activity", controllers.StatisticsUserActivity(p.Statistics, logg))
			r.Get("/dashboard", controllers.StatisticsDashboard(p.Statistics, logg))
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/profile", controllers.UpdateProfile(p.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.ListUsers(p.Users, logg))
				r.Post("/", controllers.CreateUser(p.Users, logg))
				r.Get("/stats", controllers.UserStats(p.Users, logg))
				r.Get("/logs", controllers.ListSystemLogs(p.Audit, logg))
				r.Get("/{id}", controllers.GetUser(p.Users, logg))
				r.Put("/{id}", controllers.UpdateUser(p.Users, logg))
				r.Delete("/{id}", controllers.DeleteUser(p.Users, logg))
				r.Put("/{id}/status", controllers.SetUserStatus(p.Users, logg))
				r.Put("/{id}/reset-password", controllers.ResetUserPassword(p.Users, logg))
			})
		})
	})

	return r
}
