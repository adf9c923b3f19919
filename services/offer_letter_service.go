package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/apprenticeapex/backend/configs"
	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/notifications"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// GenerateOfferLetter renders the offer letter for an application that
// reached "offer", prints it to PDF and stores the upload URL on the
// application. Runs in the background from the status-update handler.
func GenerateOfferLetter(application models.Application) {
	if application.OfferLetterURL != nil {
		return
	}

	var employerProfile models.EmployerProfile
	if err := database.DB.Where("user_id = ?", application.Apprenticeship.EmployerID).First(&employerProfile).Error; err != nil {
		log.Printf("🔥 Failed to load employer profile for offer letter: %v", err)
		return
	}

	htmlData, err := generateOfferLetterHTML(application, employerProfile.CompanyName)
	if err != nil {
		log.Printf("🔥 Failed to generate offer letter HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, application.CandidateID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload offer letter to Cloudinary: %v", err)
		return
	}

	if err := database.DB.Model(&models.Application{}).
		Where("id = ?", application.ID).
		Update("offer_letter_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to save offer letter URL for application %s: %v", application.Reference, err)
		return
	}

	go notifications.SendEmail(
		application.Candidate.FullName,
		application.Candidate.Email,
		"Your Offer Letter Is Ready",
		fmt.Sprintf("<h1>Offer Letter</h1><p>Your offer letter for \"%s\" is ready.</p><p><a href='%s'>Download Offer Letter</a></p>", application.Apprenticeship.Title, uploadURL),
	)

	log.Printf("✅ Generated and uploaded offer letter for application %s.", application.Reference)
}

func generateOfferLetterHTML(application models.Application, companyName string) (string, error) {
	tmpl, err := template.ParseFiles("templates/offer_letter.html")
	if err != nil {
		return "", err
	}

	data := struct {
		CandidateName string
		CompanyName   string
		JobTitle      string
		WeeklyWage    string
		HoursPerWeek  int
		Reference     string
		IssueDate     string
	}{
		CandidateName: application.Candidate.FullName,
		CompanyName:   companyName,
		JobTitle:      application.Apprenticeship.Title,
		WeeklyWage:    fmt.Sprintf("£%.2f", application.Apprenticeship.WeeklyWage),
		HoursPerWeek:  application.Apprenticeship.HoursPerWeek,
		Reference:     application.Reference,
		IssueDate:     time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, candidateID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("offer_letters/%s_%s", candidateID, uuid.New().String()),
		Folder:       "apprentice_apex_offer_letters",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
