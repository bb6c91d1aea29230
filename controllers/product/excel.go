package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mdredwanislamsiam/Phi-Mart/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ImportProductsFromExcel bulk-creates or updates products from an uploaded
// spreadsheet. Columns: ID, Name, Description, Price, Stock, Image,
// CategoryID. Rows with a known ID update in place, others insert.
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			idStr := get(0)
			name := get(1)
			description := get(2)
			price, err1 := strconv.ParseFloat(get(3), 64)
			stock, _ := strconv.Atoi(get(4))
			image := get(5)
			categoryID, err2 := strconv.ParseUint(get(6), 10, 64)

			if name == "" || err1 != nil || err2 != nil || price < 0 || stock < 0 {
				skippedCount++
				continue
			}

			var category models.Category
			if err := db.First(&category, uint(categoryID)).Error; err != nil {
				skippedCount++
				continue
			}

			product := models.Product{
				Name:        name,
				Description: description,
				Price:       price,
				Stock:       stock,
				Image:       image,
				CategoryID:  uint(categoryID),
			}

			if idStr != "" {
				if id, err := strconv.Atoi(idStr); err == nil {
					var existing models.Product
					if err := db.First(&existing, id).Error; err == nil {
						existing.Name = product.Name
						existing.Description = product.Description
						existing.Price = product.Price
						existing.Stock = product.Stock
						existing.Image = product.Image
						existing.CategoryID = product.CategoryID

						if err := db.Save(&existing).Error; err == nil {
							updatedCount++
							continue
						}
						skippedCount++
						continue
					}
				}
			}

			if err := db.Create(&product).Error; err == nil {
				createdCount++
			} else {
				skippedCount++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}
