package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/croplens/croplens/internal/activity"
	"github.com/croplens/croplens/internal/analysis"
	"github.com/croplens/croplens/internal/notification"
	"github.com/croplens/croplens/internal/properties"
	"github.com/croplens/croplens/output"
)

func printBanner() {
	figure1 := figure.NewFigure("CropLens", "isometric1", true)
	bannercolor.Green(figure1.String())
	fmt.Println()
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("CropLens CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			err := notification.SendDiscordErrorNotification(errMessage)
			if err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	analyzer := analysis.New(analysis.WithProgress())
	activityLog := activity.NewLog()
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Analyze a field photo\033[0m")
		fmt.Println("\033[34m2. List recent analyses\033[0m")
		fmt.Println("\033[34m3. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}

		switch choice {
		case 1:
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33m- Supported formats: JPEG, PNG, GIF, WebP, TIFF.\033[0m")
			fmt.Println("\033[33m- Results are written to data/result under ROOT_PATH.\n\033[0m")
			reader.Reset(os.Stdin)

			fmt.Print("\033[34mEnter the image path: \033[0m")
			imagePath, _ := reader.ReadString('\n')
			imagePath = strings.TrimSpace(imagePath)

			fmt.Print("\033[34mEnter the zone count (4 or 9): \033[0m")
			zoneCountStr, _ := reader.ReadString('\n')
			zoneCount, err := strconv.Atoi(strings.TrimSpace(zoneCountStr))
			if err != nil || zoneCount <= 0 {
				zoneCount = properties.DefaultZoneCount()
				fmt.Printf("\033[33mUsing default zone count: %d\033[0m\n", zoneCount)
			}

			fmt.Print("\033[34mEnter the crop type (optional): \033[0m")
			cropType, _ := reader.ReadString('\n')
			cropType = strings.TrimSpace(cropType)

			result, err := analyzer.Analyze(context.Background(), analysis.Request{
				ImagePath: imagePath,
				ZoneCount: zoneCount,
				CropType:  cropType,
			})
			if err != nil {
				fmt.Printf("\n\033[31mError analyzing field: %s\033[0m\n", err.Error())
				notification.SendDiscordErrorNotification(fmt.Sprintf("CropLens CLI\n\nError analyzing field: %s", err.Error()))
				continue
			}

			resultDir := fmt.Sprintf("%s/data/result", properties.RootPath())
			prefix := fmt.Sprintf("field_%s", time.Now().Format("2006-01-02_15-04-05"))

			files, err := output.CreateCompositeImages(result.Composites, resultDir, prefix)
			if err != nil {
				fmt.Printf("\n\033[31mError writing composites: %s\033[0m\n", err.Error())
				continue
			}

			overlayPath, err := output.CreateZoneOverlay(result.Source, result.Zones, resultDir, prefix)
			if err != nil {
				fmt.Printf("\n\033[31mError writing zone overlay: %s\033[0m\n", err.Error())
				continue
			}

			csvPath, err := output.CreateZoneReportCSV(result.Zones, resultDir, prefix)
			if err != nil {
				fmt.Printf("\n\033[31mError writing zone report: %s\033[0m\n", err.Error())
				continue
			}

			geojsonPath, err := output.CreateZoneGeoJSON(result.Zones, resultDir, prefix)
			if err != nil {
				fmt.Printf("\n\033[31mError writing zone geojson: %s\033[0m\n", err.Error())
				continue
			}

			if err := activityLog.Append(activity.Summary{
				Timestamp:     time.Now(),
				OverallHealth: result.GlobalStats.OverallHealth,
				ZoneCount:     len(result.Zones),
				AvgNDVI:       result.GlobalStats.AvgNDVI,
			}); err != nil {
				fmt.Printf("\033[33mFailed to record activity: %s\033[0m\n", err.Error())
			}

			fmt.Printf("\n\033[32mSuccessful analysis!\033[0m\n")
			fmt.Printf("\033[32mOverall health: %d/100, avg NDVI: %.3f, zones: %d\033[0m\n",
				result.GlobalStats.OverallHealth, result.GlobalStats.AvgNDVI, len(result.Zones))
			for _, w := range result.EarlyWarnings {
				fmt.Printf("\033[33m[%s] %s\033[0m\n", w.Severity, w.Message)
			}
			for _, item := range result.ActionPlan {
				fmt.Printf("\033[36m%d. %s (%s)\033[0m\n", item.Priority, item.Action, item.Timeline)
			}
			fmt.Printf("\033[32mComposites: %d files\nZone overlay: %s\nZone report: %s\nZone geojson: %s\033[0m\n", len(files), overlayPath, csvPath, geojsonPath)
			notification.SendDiscordSuccessNotification(fmt.Sprintf("CropLens CLI\n\nSuccessful analysis!\nOverall health: %d/100\nZone report: %s", result.GlobalStats.OverallHealth, csvPath))
		case 2:
			summaries, err := activityLog.Recent(10)
			if err != nil {
				fmt.Printf("\n\033[31mError reading activity log: %s\033[0m\n", err.Error())
				continue
			}
			if len(summaries) == 0 {
				fmt.Println("\033[33m\nNo analyses recorded yet.\033[0m")
				continue
			}
			fmt.Println("\033[32m\nRecent analyses:\033[0m")
			for _, s := range summaries {
				fmt.Printf("\033[32m- %s  health %d/100  zones %d  ndvi %.3f\033[0m\n",
					s.Timestamp.Format("2006-01-02 15:04"), s.OverallHealth, s.ZoneCount, s.AvgNDVI)
			}
		case 3:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	err := godotenv.Load("../../.env")
	if err != nil {
		err := godotenv.Load("../.env")
		if err != nil {
			godotenv.Load(".env")
		}
	}

	initCLI()
}
