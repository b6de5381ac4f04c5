package adminapi

// Init registers every API route on the global web server.
func Init() {
	registerSessionRoutes()
	registerOnboardingRoutes()
	registerPreviewRoutes()
	registerCatalogRoutes()
	registerCartRoutes()
	registerAnnotationRoutes()
	registerMilestoneRoutes()
	registerUploadRoutes()
	registerSystemRoutes()
}
