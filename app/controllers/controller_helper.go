package controllers

import (
	"strconv"
	"sync"

	"github.com/carryit/rentpay/app/repository"
	"github.com/carryit/rentpay/internal/pkg/monitor"
	"github.com/carryit/rentpay/internal/pkg/notify"
	"github.com/carryit/rentpay/internal/pkg/payment"
	"github.com/carryit/rentpay/internal/pkg/qrpay"
	"github.com/carryit/rentpay/internal/pkg/reconcile"
	"github.com/gofiber/fiber/v2"
)

var (
	servicesOnce sync.Once
	qrService    *qrpay.Service
	paySvc       *payment.Service
	reconcileSvc *reconcile.Service
	monitorSvc   *monitor.Service
	settingRepo  repository.SettingRepository
)

func initServices() {
	servicesOnce.Do(func() {
		repos := repository.GetGlobalRepositories()
		qrService = qrpay.NewService(repos.PaymentRequest)
		paySvc = payment.NewService(repos, notify.DefaultNotifier())
		reconcileSvc = reconcile.NewService(repos)
		monitorSvc = monitor.NewService(repos)
		settingRepo = repos.Setting
	})
}

func getQRService() *qrpay.Service {
	initServices()
	return qrService
}

func getPaymentService() *payment.Service {
	initServices()
	return paySvc
}

func getReconcileService() *reconcile.Service {
	initServices()
	return reconcileSvc
}

func getMonitorService() *monitor.Service {
	initServices()
	return monitorSvc
}

func getSettingRepository() repository.SettingRepository {
	initServices()
	return settingRepo
}

// errorJSON is the standard error envelope for API responses.
func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// paramUint parses a numeric path parameter.
func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// queryUintPtr parses an optional numeric query parameter.
func queryUintPtr(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	out := uint(v)
	return &out, nil
}

// paging extracts offset/limit query parameters with a bounded default.
func paging(c *fiber.Ctx) (int, int) {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
