package routes_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/gofiber/fiber/v2"

	"github.com/apprenticeapex/backend/routes"
)

var _ = Describe("Route registration", func() {
	var registered map[string]bool

	BeforeEach(func() {
		app := fiber.New()
		routes.ApprenticeshipRoutes(app)
		routes.ApplicationRoutes(app)
		routes.AdminRoutes(app)
		routes.MessagingRoutes(app)

		registered = make(map[string]bool)
		for _, route := range app.GetRoutes() {
			registered[route.Method+" "+route.Path] = true
		}
	})

	// Handlers read path parameters by name, so every parameterized route
	// must declare the exact name its handler looks up.
	It("declares the parameter names the handlers read", func() {
		for _, want := range []string{
			"GET /api/v1/apprenticeships/:apprenticeshipId",
			"PUT /api/v1/employer/apprenticeships/:apprenticeshipId",
			"DELETE /api/v1/employer/apprenticeships/:apprenticeshipId",
			"GET /api/v1/employer/apprenticeships/:apprenticeshipId/applications",
			"POST /api/v1/applications/:applicationId/withdraw",
			"PUT /api/v1/employer/applications/:applicationId/status",
			"PUT /api/v1/admin/employers/:employerId/verify",
			"PUT /api/v1/admin/users/:userId/deactivate",
			"GET /api/v1/conversations/:conversationId/messages",
		} {
			Expect(registered).To(HaveKey(want))
		}
	})
})
