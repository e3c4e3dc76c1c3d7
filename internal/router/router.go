package router

import (
	"time"

	"minimarket/internal/config"
	"minimarket/internal/handler"
	"minimarket/internal/infra"
	"minimarket/internal/middleware"
	"minimarket/internal/repository"
	"minimarket/internal/service"
	"minimarket/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, sunat *infra.SUNATClient, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	pasarela := infra.NewPasarelaClient(cfg.PasarelaURL, cfg.PasarelaAPIKey)
	consultas := infra.NewConsultasClient(cfg.ConsultasURL, cfg.ConsultasToken, rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	promocionRepo := repository.NewPromocionRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	devolucionRepo := repository.NewDevolucionRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, movimientoStockRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	promocionSvc := service.NewPromocionService(promocionRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoStockRepo, promocionSvc, pasarela, dispatcher)
	devolucionSvc := service.NewDevolucionService(devolucionRepo, ventaRepo, productoRepo, movimientoStockRepo)
	facturacionSvc := service.NewFacturacionService(comprobanteRepo, dispatcher)
	reporteSvc := service.NewReporteService(reporteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	promocionesH := handler.NewPromocionesHandler(promocionSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	devolucionesH := handler.NewDevolucionesHandler(devolucionSvc)
	facturacionH := handler.NewFacturacionHandler(facturacionSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	consultasH := handler.NewConsultasHandler(consultas)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, sunat))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, vendedor, administrador — declared per-endpoint
		caja := middleware.RequireRole("cajero", "vendedor", "administrador")
		admin := middleware.RequireRole("administrador")

		v1.POST("/ventas", caja, ventasH.Procesar)
		v1.GET("/ventas", caja, ventasH.Listar)
		v1.GET("/ventas/codigo/:codigo", caja, ventasH.ObtenerPorCodigo)
		v1.DELETE("/ventas/:id", admin, ventasH.Anular)
		v1.GET("/ventas/codigo/:codigo/devoluciones", caja, devolucionesH.ListarPorVenta)

		v1.POST("/devoluciones", caja, devolucionesH.Procesar)
		v1.GET("/devoluciones/:id", caja, devolucionesH.Obtener)

		// Productos — all authenticated read, administrador writes
		v1.GET("/productos", caja, productosH.Listar)
		v1.GET("/productos/stock-bajo", caja, productosH.StockBajo)
		v1.GET("/productos/codigo/:codigo", caja, productosH.ObtenerPorCodigo)
		v1.GET("/productos/:id", caja, productosH.Obtener)
		v1.GET("/productos/:id/movimientos", caja, productosH.Movimientos)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.PATCH("/:id/stock", productosH.AjustarStock)
		}

		// Categorías — administrador can write, all authenticated can read
		v1.GET("/categorias", caja, categoriasH.Listar)
		categorias := v1.Group("/categorias", admin)
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		// Promociones — administrador manages, register reads the active list
		v1.GET("/promociones", caja, promocionesH.Listar)
		v1.GET("/promociones/:id", caja, promocionesH.Obtener)
		promos := v1.Group("/promociones", admin)
		{
			promos.POST("", promocionesH.Crear)
			promos.PUT("/:id", promocionesH.Actualizar)
			promos.PATCH("/:id/estado", promocionesH.CambiarEstado)
			promos.DELETE("/:id", promocionesH.Eliminar)
			promos.POST("/:id/asignaciones", promocionesH.Asignar)
			promos.DELETE("/:id/asignaciones", promocionesH.Quitar)
		}

		fact := v1.Group("/facturacion", caja)
		{
			fact.GET("/:venta_id", facturacionH.ObtenerPorVenta)
			fact.POST("/:venta_id/reemitir", facturacionH.Reemitir)
		}

		reportes := v1.Group("/reportes", admin)
		{
			reportes.GET("/diario", reportesH.Diario)
			reportes.GET("/top-productos", reportesH.TopProductos)
		}

		consultasG := v1.Group("/consultas", caja)
		{
			consultasG.GET("/dni/:numero", consultasH.DNI)
			consultasG.GET("/ruc/:numero", consultasH.RUC)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
			usuarios.PATCH("/:id/reactivar", authH.ReactivarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
