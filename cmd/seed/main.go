// seed genera un script SQL con datos de demostración: empresas, usuarios,
// grupos de acceso, categorías, etiquetas, atributos, productos y los
// vínculos que conectan el grafo de acceso con el catálogo.
//
// Uso: go run ./cmd/seed
// Escribe: internal/infrastructure/postgres/migrations/002_seed_demo.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

func main() {
	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_demo.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	id := func() string { return uuid.New().String() }

	companyID := id()
	groupVIP := id()
	cugSales := id()
	adminID, employeeID := id(), id()
	catApparel := id()
	tagPublic, tagGated := id(), id()
	colorRed, colorBlue, matCotton, sizeM := id(), id(), id(), id()
	prodTee, prodTeeRed, prodTeeBlue, prodMug := id(), id(), id(), id()

	out.WriteString("-- Datos de demostración. Regenerable con go run ./cmd/seed\n\n")

	fmt.Fprintf(out, "INSERT INTO companies (id, name) VALUES ('%s', 'Acme Corp');\n\n", companyID)
	fmt.Fprintf(out, "INSERT INTO company_user_groups (id, company_id, name) VALUES ('%s', '%s', 'Ventas');\n\n", cugSales, companyID)
	fmt.Fprintf(out, "INSERT INTO users (id, company_id, email, name, role) VALUES\n"+
		"  ('%s', '%s', 'admin@acme.test', 'Admin Demo', 'admin'),\n"+
		"  ('%s', '%s', 'empleado@acme.test', 'Empleado Demo', 'employee');\n\n",
		adminID, companyID, employeeID, companyID)

	fmt.Fprintf(out, "INSERT INTO product_access_control_groups (id, name) VALUES ('%s', 'VIP');\n\n", groupVIP)
	fmt.Fprintf(out, "INSERT INTO product_categories (id, company_id, name) VALUES ('%s', '%s', 'Textil');\n\n", catApparel, companyID)
	fmt.Fprintf(out, "INSERT INTO product_category_tags (id, category_id, name) VALUES\n"+
		"  ('%s', '%s', 'basicos'),\n"+
		"  ('%s', '%s', 'edicion-limitada');\n\n",
		tagPublic, catApparel, tagGated, catApparel)

	fmt.Fprintf(out, "INSERT INTO attributes (id, kind, name) VALUES\n"+
		"  ('%s', 'color', 'rojo'),\n"+
		"  ('%s', 'color', 'azul'),\n"+
		"  ('%s', 'material', 'algodon'),\n"+
		"  ('%s', 'size', 'M');\n\n",
		colorRed, colorBlue, matCotton, sizeM)

	// Familia de variaciones: camiseta padre con dos hijos, más una taza suelta.
	fmt.Fprintf(out, "INSERT INTO products (id, company_id, sku, name, description, price_amount, price_discount, is_parent, parent_id, is_visible, color_id, material_id, size_id) VALUES\n"+
		"  ('%s', '%s', 'TEE-000', 'Camiseta Acme', 'Modelo base', 19.90, 0, TRUE, NULL, TRUE, NULL, '%s', NULL),\n"+
		"  ('%s', '%s', 'TEE-001', 'Camiseta Acme Roja', '', 19.90, 2.00, FALSE, '%s', TRUE, '%s', '%s', '%s'),\n"+
		"  ('%s', '%s', 'TEE-002', 'Camiseta Acme Azul', '', 19.90, 0, FALSE, '%s', TRUE, '%s', '%s', '%s'),\n"+
		"  ('%s', '%s', 'MUG-001', 'Taza Acme', '', 9.50, 0, FALSE, NULL, TRUE, NULL, NULL, NULL);\n\n",
		prodTee, companyID, matCotton,
		prodTeeRed, companyID, prodTee, colorRed, matCotton, sizeM,
		prodTeeBlue, companyID, prodTee, colorBlue, matCotton, sizeM,
		prodMug, companyID)

	link := func(table, subjectCol, targetCol, subjectID, targetID string) {
		fmt.Fprintf(out, "INSERT INTO %s (id, %s, %s) VALUES ('%s', '%s', '%s');\n",
			table, subjectCol, targetCol, id(), subjectID, targetID)
	}
	link("product_category_assignments", "product_id", "category_id", prodTee, catApparel)
	link("product_category_assignments", "product_id", "category_id", prodTeeRed, catApparel)
	link("product_category_assignments", "product_id", "category_id", prodTeeBlue, catApparel)
	link("product_tags", "product_id", "tag_id", prodTee, tagPublic)
	link("product_tags", "product_id", "tag_id", prodTeeRed, tagGated)
	// La etiqueta controlada solo se ve a través del grupo VIP.
	link("tag_access_groups", "tag_id", "access_group_id", tagGated, groupVIP)
	link("user_access_groups", "user_id", "access_group_id", employeeID, groupVIP)
	link("user_company_user_groups", "user_id", "company_user_group_id", employeeID, cugSales)

	fmt.Printf("Generado %s\n", outPath)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
