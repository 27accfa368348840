package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/traintrack/checkin-api/docs"
	v1 "github.com/traintrack/checkin-api/internal/api/handler/v1"
	"github.com/traintrack/checkin-api/internal/api/middleware"
	"github.com/traintrack/checkin-api/internal/config"
	"github.com/traintrack/checkin-api/internal/repository"
	"github.com/traintrack/checkin-api/internal/repository/dao"
	"github.com/traintrack/checkin-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	trainingHandler := s.initTrainingHandler(db)
	traineeHandler := s.initTraineeHandler(db)
	checkInHandler := s.initCheckInHandler(db)
	s.MountHandlers(authHandler, trainingHandler, traineeHandler, checkInHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initTrainingHandler(db *gorm.DB) *v1.TrainingHandler {
	trainingDAO := dao.NewTrainingDAO(db)
	repo := repository.NewTrainingRepository(trainingDAO)
	svc := service.NewTrainingService(repo)
	tokens := service.NewTokenService(repo, s.Config.CheckIn)
	handler := v1.NewTrainingHandler(svc, tokens)

	return handler
}

func (s *Server) initTraineeHandler(db *gorm.DB) *v1.TraineeHandler {
	traineeDAO := dao.NewTraineeDAO(db)
	repo := repository.NewTraineeRepository(traineeDAO)
	svc := service.NewTraineeService(repo)
	enrollmentRepo := repository.NewEnrollmentRepository(dao.NewEnrollmentDAO(db))
	enrollments := service.NewEnrollmentService(enrollmentRepo)
	handler := v1.NewTraineeHandler(svc, enrollments)

	return handler
}

func (s *Server) initCheckInHandler(db *gorm.DB) *v1.CheckInHandler {
	trainingRepo := repository.NewTrainingRepository(dao.NewTrainingDAO(db))
	enrollmentRepo := repository.NewEnrollmentRepository(dao.NewEnrollmentDAO(db))
	attendanceRepo := repository.NewAttendanceRepository(dao.NewAttendanceDAO(db))
	svc := service.NewCheckInService(trainingRepo, enrollmentRepo, attendanceRepo, s.Config.CheckIn)

	traineeRepo := repository.NewTraineeRepository(dao.NewTraineeDAO(db))
	trainees := service.NewTraineeService(traineeRepo)
	trainings := service.NewTrainingService(trainingRepo)
	handler := v1.NewCheckInHandler(svc, trainees, trainings)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	trainingHandler *v1.TrainingHandler,
	traineeHandler *v1.TraineeHandler,
	checkInHandler *v1.CheckInHandler,
) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	admin := s.Router.Group(basePath, authenticator.VerifyJWT(), authenticator.RequireAdmin())
	{
		admin.POST("/trainings", trainingHandler.HandleCreateTraining)
		admin.POST("/trainings/:trainingID/token", trainingHandler.HandleIssueToken)
		admin.GET("/trainings/:trainingID/qr", trainingHandler.HandleGetQR)
		admin.GET("/trainings/:trainingID/qr.png", trainingHandler.HandleGetQRImage)
		admin.POST("/trainings/:trainingID/rotation/start", trainingHandler.HandleStartRotation)
		admin.POST("/trainings/:trainingID/rotation/stop", trainingHandler.HandleStopRotation)

		admin.POST("/trainees", traineeHandler.HandleCreateTrainee)
		admin.GET("/trainees/:traineeID", traineeHandler.HandleGetTrainee)
		admin.POST("/enrollments", traineeHandler.HandleCreateEnrollment)
		admin.DELETE("/enrollments/:enrollmentID", traineeHandler.HandleRevokeEnrollment)
	}

	users := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		users.GET("/trainings", trainingHandler.HandleGetTrainings)
		users.GET("/trainings/:trainingID", trainingHandler.HandleGetTraining)
		users.POST("/check-ins", checkInHandler.HandleCheckIn)
		users.GET("/attendance", checkInHandler.HandleListAttendance)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Training Attendance API"
	docs.SwaggerInfo.Description = "QR check-in with geofence validation."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
