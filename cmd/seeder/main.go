package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/retrievit"
	"github.com/poiesic/retrievit/core"
)

// essentialDocs is a minimal base corpus covering the most common R
// workflows, used to bootstrap a fresh database for local testing.
var essentialDocs = []core.Document{
	{
		Content: `lm() - Fitting Linear Models

Description:
lm is used to fit linear models. It can be used to carry out regression,
single stratum analysis of variance and analysis of covariance.

Usage:
lm(formula, data, subset, weights, na.action, method = "qr",
   model = TRUE, x = FALSE, y = FALSE, qr = TRUE, singular.ok = TRUE,
   contrasts = NULL, offset, ...)

Arguments:
formula: an object of class "formula" (or one that can be coerced to that class)
data: an optional data frame, list or environment containing the variables in the model
subset: an optional vector specifying a subset of observations to be used
weights: an optional vector of weights to be used in the fitting process

Examples:
# Simple linear regression
model <- lm(mpg ~ wt, data = mtcars)
summary(model)

# Multiple regression
model <- lm(mpg ~ wt + hp + cyl, data = mtcars)`,
		Meta: core.DocumentMeta{
			Title:    "Linear Models - lm() function",
			Type:     "function",
			Package:  "stats",
			Function: "lm",
			Task:     "statistical_modeling",
			Extra:    map[string]string{"concept": "regression, linear, model"},
		},
	},
	{
		Content: `plot() - Generic Plotting Function

Description:
Generic function for plotting of R objects. For more details about
the graphical parameter arguments, see par.

Usage:
plot(x, y, ...)

Arguments:
x, y: the coordinates of points in the plot

Examples:
# Simple scatter plot
plot(mtcars$wt, mtcars$mpg)

# With labels
plot(mtcars$wt, mtcars$mpg,
     xlab = "Weight", ylab = "MPG",
     main = "Weight vs MPG")`,
		Meta: core.DocumentMeta{
			Title:    "Data Visualization - plot() function",
			Type:     "function",
			Package:  "graphics",
			Function: "plot",
			Task:     "data_visualization",
			Extra:    map[string]string{"concept": "plot, visualization, scatter"},
		},
	},
	{
		Content: `Checking Linear Regression Assumptions

Linear regression relies on several key assumptions:

1. Linearity: The relationship between predictors and response is linear
2. Independence: Observations are independent
3. Homoscedasticity: Constant variance of residuals
4. Normality: Residuals are normally distributed

Diagnostic Methods:

# Residual plots
model <- lm(y ~ x, data = mydata)
plot(model)  # Produces 4 diagnostic plots

# Individual diagnostics
residuals <- residuals(model)
fitted_values <- fitted(model)

# Residuals vs Fitted plot
plot(fitted_values, residuals)
abline(h = 0)

# Q-Q plot for normality
qqnorm(residuals)
qqline(residuals)

# Histogram of residuals
hist(residuals)

# Statistical tests
shapiro.test(residuals)  # Normality test`,
		Meta: core.DocumentMeta{
			Title:    "Linear Regression Assumptions and Diagnostics",
			Type:     "concept",
			Package:  "stats",
			Function: "diagnostics",
			Task:     "statistical_modeling",
			Extra:    map[string]string{"concept": "regression, assumptions, diagnostics"},
		},
	},
}

var dbPath = flag.String("db", "./docs_db", "path to BadgerDB database directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	engine, err := retrievit.NewEngine(*dbPath)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	added, err := engine.AddDocuments(context.Background(), essentialDocs...)
	if err != nil {
		panic(err)
	}

	slog.Info("seeded essential documentation", "added", added, "corpus", engine.Len())
}
