package catalog

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"saborconquista/internal/model"
)

const ExportSheet = "Cardapio"

var exportHeader = []any{"ID", "Nome", "Descrição", "Categoria", "Preço (R$)", "Disponível"}

// Export writes the catalog to a spreadsheet, one row per item after the header.
func Export(items []model.MenuItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, it := range items {
		categoria := it.Categoria
		if c, ok := model.LookupCategory(it.Categoria); ok {
			categoria = c.Name
		}
		disponivel := "Não"
		if it.Disponibilidade {
			disponivel = "Sim"
		}
		row := []any{
			it.ID.String(),
			it.Nome,
			it.Descricao,
			categoria,
			float64(it.Preco) / 100,
			disponivel,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
